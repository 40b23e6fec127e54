package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/fortuna/pitchside/internal/dashboard"
	"github.com/fortuna/pitchside/internal/render"
	"github.com/fortuna/pitchside/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RunLister returns the most recent sync runs
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]*store.SyncRun, error)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ClientCounter reports connected notification clients
type ClientCounter interface {
	ClientCount() int
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	ctrl     *dashboard.Controller
	runs     RunLister
	database HealthChecker
	clients  ClientCounter
	log      *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(ctrl *dashboard.Controller, opts Options, log *zap.Logger) *Handler {
	return &Handler{
		ctrl:     ctrl,
		runs:     opts.Runs,
		database: opts.Database,
		clients:  opts.Clients,
		log:      log,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "healthy",
		"service": "pitchside",
	}

	if h.clients != nil {
		body["ws_clients"] = h.clients.ClientCount()
	}
	if h.database != nil {
		if err := h.database.HealthCheck(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}

	respondJSON(w, status, body)
}

// Index sends the browser to the dashboard section
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/section/dashboard", http.StatusFound)
}

// Section switches the active section and renders the full page
func (h *Handler) Section(w http.ResponseWriter, r *http.Request) {
	page, err := h.ctrl.Switch(r.Context(), mux.Vars(r)["section"])
	if errors.Is(err, dashboard.ErrUnknownSection) {
		h.log.Debug("unknown section requested", zap.Error(err))
		h.renderStatus(w, r, http.StatusNotFound, render.Page(page))
		return
	}

	h.render(w, r, render.Page(page))
}

// TeamsGrid renders the teams grid filtered by ?q=
func (h *Handler) TeamsGrid(w http.ResponseWriter, r *http.Request) {
	teams := h.ctrl.TeamsView(r.URL.Query().Get("q"))
	h.render(w, r, render.TeamsGrid(teams))
}

// MatchesTable renders the match rows filtered by championship and status
func (h *Handler) MatchesTable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches := h.ctrl.MatchesView(q.Get("championship"), q.Get("status"))
	h.render(w, r, render.MatchesTable(matches))
}

// TodayOpportunities reloads and renders the daily recommendations
func (h *Handler) TodayOpportunities(w http.ResponseWriter, r *http.Request) {
	_ = h.ctrl.LoadTodayOpportunities(r.Context())
	snap := h.ctrl.Snapshot()
	h.render(w, r, render.Recommendations(snap.Recommendations, snap.RecommendationsErr))
}

// FindOpportunities searches for 1.25-odds bets and renders them
func (h *Handler) FindOpportunities(w http.ResponseWriter, r *http.Request) {
	var championshipID *int
	if raw := strings.TrimSpace(r.FormValue("championship_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid championship_id", http.StatusBadRequest)
			return
		}
		championshipID = &id
	}

	_ = h.ctrl.FindOpportunities(r.Context(), championshipID)
	h.render(w, r, render.Opportunities(h.ctrl.Snapshot().Opportunities))
}

// AnalyzeMatch runs the match analysis for the selected teams
func (h *Handler) AnalyzeMatch(w http.ResponseWriter, r *http.Request) {
	home := formInt(r, "home_team_id")
	away := formInt(r, "away_team_id")

	if err := h.ctrl.AnalyzeMatch(r.Context(), home, away); err != nil {
		h.log.Debug("match analysis not rendered", zap.Error(err))
	}
	h.render(w, r, render.MatchAnalysis(h.ctrl.Snapshot().Analysis))
}

// CalculateBet runs the bet calculator on the submitted stake and confidence
func (h *Handler) CalculateBet(w http.ResponseWriter, r *http.Request) {
	stake := formFloat(r, "stake")
	confidence := formFloat(r, "confidence")

	result, _ := h.ctrl.CalculateBet(stake, confidence)
	h.render(w, r, render.CalculatorResult(result))
}

// Sync runs the championship sync and returns to the current section
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Sync(r.Context()); err != nil {
		h.log.Warn("sync did not complete", zap.Error(err))
	}

	section := h.ctrl.Snapshot().CurrentSection
	http.Redirect(w, r, "/section/"+string(section), http.StatusSeeOther)
}

// AnalyzeSpecificMatch handles the analyze button on a match row
func (h *Handler) AnalyzeSpecificMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(mux.Vars(r)["matchID"])
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	h.ctrl.AnalyzeSpecificMatch(matchID)
	h.render(w, r, render.Toasts(h.ctrl.Toasts()))
}

// Toasts renders the notifications still on screen
func (h *Handler) Toasts(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, render.Toasts(h.ctrl.Toasts()))
}

type syncRunResponse struct {
	RunID         int64           `json:"run_id"`
	Trigger       string          `json:"trigger"`
	Championships []int64         `json:"championships"`
	Status        string          `json:"status"`
	Summary       json.RawMessage `json:"summary,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// ListSyncRuns returns the recent sync audit trail
func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "Sync history is not configured", nil)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	runs, err := h.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch sync runs", err)
		return
	}

	out := make([]syncRunResponse, 0, len(runs))
	for _, run := range runs {
		resp := syncRunResponse{
			RunID:         run.RunID,
			Trigger:       run.Trigger,
			Championships: run.Championships,
			Status:        run.Status,
			StartedAt:     run.StartedAt,
		}
		if len(run.Summary) > 0 {
			resp.Summary = json.RawMessage(run.Summary)
		}
		if run.LastError.Valid {
			resp.LastError = run.LastError.String
		}
		if run.CompletedAt.Valid {
			completed := run.CompletedAt.Time
			resp.CompletedAt = &completed
		}
		out = append(out, resp)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  out,
		"count": len(out),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	h.renderStatus(w, r, http.StatusOK, c)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// formInt reads an integer form field; missing or invalid values are 0
func formInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return 0
	}
	return v
}

// formFloat reads a decimal form field; missing or invalid values are 0
func formFloat(r *http.Request, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	if err != nil {
		return 0
	}
	return v
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
