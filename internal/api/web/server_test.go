package web_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/pitchside/internal/api/web"
	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/dashboard"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/state"
	"github.com/fortuna/pitchside/internal/store"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// fakeAPI serves canned responses for the analysis backend
type fakeAPI struct {
	mu    sync.Mutex
	hits  map[string]int
	teams string
}

func (f *fakeAPI) hit(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[path]++
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hit(r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/api/football/teams":
		w.Write([]byte(f.teams))
	case r.URL.Path == "/api/football/matches":
		w.Write([]byte(`[]`))
	case r.URL.Path == "/api/odds/performance-tracking":
		w.Write([]byte(`{"period":"30 dias","overall_metrics":{"total_predictions":40,"win_rate":82.5,"roi":12.3}}`))
	case r.URL.Path == "/api/odds/daily-recommendations":
		w.Write([]byte(`{"date":"2025-01-01","recommendations":[]}`))
	case r.URL.Path == "/api/odds/market-analysis":
		w.Write([]byte(`{"sample_size":10}`))
	case r.URL.Path == "/api/odds/find-125-opportunities":
		w.Write([]byte(`{"total_opportunities":1,"high_confidence_bets":[{"match":"Benfica vs Porto","confidence":88,"supporting_factors":["forma"]}]}`))
	case r.URL.Path == "/api/advanced/analyze-match":
		w.Write([]byte(`{"match_info":{"home_team":"Benfica","away_team":"Porto"},"match_probabilities":{"home_win":55,"draw":25,"away_win":20}}`))
	case strings.HasPrefix(r.URL.Path, "/api/football/sync-championship/"):
		w.Write([]byte(`{"message":"ok","teams_synced":20,"matches_synced":380}`))
	case r.URL.Path == "/api/football/calculate-stats":
		w.Write([]byte(`{"message":"ok","teams_updated":20}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}
}

type fakeRuns struct {
	runs []*store.SyncRun
	err  error
}

func (f *fakeRuns) RecentRuns(ctx context.Context, limit int) ([]*store.SyncRun, error) {
	return f.runs, f.err
}

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(ctx context.Context) error { return f.err }

type fixture struct {
	api   *fakeAPI
	ctrl  *dashboard.Controller
	store *state.Store
	srv   *httptest.Server
}

func newFixture(t *testing.T, opts web.Options) *fixture {
	t.Helper()

	api := &fakeAPI{
		hits: map[string]int{},
		teams: `[{"id":1,"api_id":101,"name":"Sport Lisboa e Benfica","popular_name":"Benfica","abbreviation":"SLB"},
			{"id":2,"api_id":102,"name":"Futebol Clube do Porto","popular_name":"Porto","abbreviation":"FCP"}]`,
	}
	backendSrv := httptest.NewServer(api)
	t.Cleanup(backendSrv.Close)

	client := backend.New(backend.Config{BaseURL: backendSrv.URL + "/api", SyncInterval: time.Millisecond})
	st := state.NewStore()
	notes := notify.NewCenter(zap.NewNop(), time.Minute)
	ctrl := dashboard.NewController(client, st, notes, nil, dashboard.Config{}, zap.NewNop())

	srv := httptest.NewServer(web.NewRouter(web.NewHandler(ctrl, opts, zap.NewNop()), opts, zap.NewNop()))
	t.Cleanup(srv.Close)

	return &fixture{api: api, ctrl: ctrl, store: st, srv: srv}
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func getDoc(t *testing.T, rawURL string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return resp, doc
}

func postDoc(t *testing.T, rawURL string, form url.Values) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := http.PostForm(rawURL, form)
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return resp, doc
}

func TestIndex_RedirectsToDashboard(t *testing.T) {
	f := newFixture(t, web.Options{})

	resp, err := noRedirect().Get(f.srv.URL + "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/section/dashboard" {
		t.Errorf("expected /section/dashboard, got %s", loc)
	}
}

func TestSection_ExactlyOneActivePanel(t *testing.T) {
	f := newFixture(t, web.Options{})

	for _, section := range []string{"dashboard", "teams", "matches", "odds125", "analysis", "performance"} {
		t.Run(section, func(t *testing.T) {
			resp, doc := getDoc(t, f.srv.URL+"/section/"+section)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}

			active := doc.Find("section.content-section.active")
			if active.Length() != 1 {
				t.Fatalf("expected 1 active section, got %d", active.Length())
			}
			if id, _ := active.Attr("id"); id != section+"-section" {
				t.Errorf("expected %s-section, got %s", section, id)
			}

			menu := doc.Find("a.menu-item.active")
			if menu.Length() != 1 {
				t.Fatalf("expected 1 active menu item, got %d", menu.Length())
			}
			if got, _ := menu.Attr("data-section"); got != section {
				t.Errorf("expected active menu %s, got %s", section, got)
			}
		})
	}
}

func TestSection_Titles(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := getDoc(t, f.srv.URL+"/section/teams")
	if got := doc.Find("#page-title").Text(); got != "Equipas" {
		t.Errorf("expected title Equipas, got %q", got)
	}
	if got := doc.Find("#page-subtitle").Text(); got != "Gestão e análise de equipas" {
		t.Errorf("unexpected subtitle %q", got)
	}
}

func TestSection_Unknown(t *testing.T) {
	f := newFixture(t, web.Options{})

	resp, doc := getDoc(t, f.srv.URL+"/section/settings")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if doc.Find("section.content-section.active").Length() != 1 {
		t.Error("expected the current section to stay rendered")
	}
}

func TestSection_DashboardStats(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := getDoc(t, f.srv.URL+"/section/dashboard")
	if got := strings.TrimSpace(doc.Find("#total-teams").Text()); got != "2" {
		t.Errorf("expected 2 teams, got %q", got)
	}
	if got := strings.TrimSpace(doc.Find("#total-matches").Text()); got != "0" {
		t.Errorf("expected 0 matches, got %q", got)
	}
}

func TestTeamsGrid_FilterLeavesStoreIntact(t *testing.T) {
	f := newFixture(t, web.Options{})
	f.ctrl.Init(context.Background())

	_, doc := getDoc(t, f.srv.URL+"/teams/grid?q=PORTO")
	if n := doc.Find(".team-card").Length(); n != 1 {
		t.Errorf("expected 1 team card, got %d", n)
	}

	_, doc = getDoc(t, f.srv.URL+"/teams/grid?q=")
	if n := doc.Find(".team-card").Length(); n != 2 {
		t.Errorf("expected 2 team cards for empty query, got %d", n)
	}

	if n := len(f.store.Snapshot().Teams); n != 2 {
		t.Errorf("expected stored teams untouched, got %d", n)
	}
}

func TestMatchesTable_EmptyState(t *testing.T) {
	f := newFixture(t, web.Options{})

	resp, err := http.Get(f.srv.URL + "/matches/table?status=finalizado")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tbody>" + string(raw) + "</tbody></table>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cell := doc.Find("td.empty-state")
	if cell.Length() != 1 {
		t.Fatalf("expected empty-state cell, got %d", cell.Length())
	}
	if span, _ := cell.Attr("colspan"); span != "7" {
		t.Errorf("expected colspan 7, got %s", span)
	}
}

func TestCalculator(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := postDoc(t, f.srv.URL+"/calculator", url.Values{"stake": {"100"}, "confidence": {"85"}})
	if got := doc.Find("#calc-profit").Text(); got != "€25.00" {
		t.Errorf("expected €25.00, got %q", got)
	}
	if got := doc.Find("#calc-ev").Text(); got != "€6.25" {
		t.Errorf("expected €6.25, got %q", got)
	}
	if got := doc.Find("#calc-roi").Text(); got != "6.25%" {
		t.Errorf("expected 6.25%%, got %q", got)
	}
}

func TestCalculator_InvalidInput(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := postDoc(t, f.srv.URL+"/calculator", url.Values{"stake": {"0"}, "confidence": {"50"}})
	if doc.Find("#calc-results").Length() != 0 {
		t.Error("expected no result panel")
	}

	_, toasts := getDoc(t, f.srv.URL+"/toasts")
	warning := toasts.Find(".toast.warning")
	if warning.Length() != 1 {
		t.Fatalf("expected 1 warning toast, got %d", warning.Length())
	}
	if got := warning.Text(); got != "Por favor, insira valores válidos" {
		t.Errorf("unexpected toast %q", got)
	}
}

func TestCalculator_NonFiniteInput(t *testing.T) {
	for _, stake := range []string{"NaN", "Inf", "-Inf", "1e400"} {
		t.Run(stake, func(t *testing.T) {
			f := newFixture(t, web.Options{})

			resp, doc := postDoc(t, f.srv.URL+"/calculator", url.Values{"stake": {stake}, "confidence": {"85"}})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if doc.Find("#calc-results").Length() != 0 {
				t.Error("expected no result panel")
			}

			_, toasts := getDoc(t, f.srv.URL+"/toasts")
			if n := toasts.Find(".toast.warning").Length(); n != 1 {
				t.Errorf("expected 1 warning toast, got %d", n)
			}
		})
	}
}

func TestAnalysis_SameTeamRejectedBeforeRequest(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := postDoc(t, f.srv.URL+"/analysis", url.Values{"home_team_id": {"101"}, "away_team_id": {"101"}})
	if doc.Find("#match-analysis-results").Length() != 0 {
		t.Error("expected no analysis")
	}
	if n := f.api.count("/api/advanced/analyze-match"); n != 0 {
		t.Errorf("expected no backend request, got %d", n)
	}
}

func TestAnalysis_Success(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := postDoc(t, f.srv.URL+"/analysis", url.Values{"home_team_id": {"101"}, "away_team_id": {"102"}})
	if doc.Find("#match-analysis-results").Length() != 1 {
		t.Error("expected analysis results")
	}
}

func TestFindOpportunities(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := postDoc(t, f.srv.URL+"/odds/opportunities", url.Values{"championship_id": {"10"}})
	if got := doc.Find("#recommendations-count").Text(); got != "1" {
		t.Errorf("expected 1 recommendation, got %q", got)
	}

	resp, err := http.PostForm(f.srv.URL+"/odds/opportunities", url.Values{"championship_id": {"abc"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid id, got %d", resp.StatusCode)
	}
}

func TestAnalyzeSpecificMatch(t *testing.T) {
	f := newFixture(t, web.Options{})

	_, doc := getDoc(t, f.srv.URL+"/matches/7/analyze")
	if got := doc.Find(".toast.info").Text(); got != "Funcionalidade em desenvolvimento" {
		t.Errorf("unexpected toast %q", got)
	}
}

func TestSync_RedirectsToCurrentSection(t *testing.T) {
	f := newFixture(t, web.Options{})

	resp, err := noRedirect().PostForm(f.srv.URL+"/sync", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/section/dashboard" {
		t.Errorf("expected /section/dashboard, got %s", loc)
	}
	if n := f.api.count("/api/football/calculate-stats"); n != 1 {
		t.Errorf("expected stats to be calculated once, got %d", n)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, web.Options{Database: fakeDB{err: errors.New("connection refused")}})

	resp, err := http.Get(f.srv.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected degraded, got %v", body["status"])
	}
}

func TestListSyncRuns(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := &fakeRuns{runs: []*store.SyncRun{{
		RunID:         7,
		Trigger:       "cli",
		Championships: pq.Int64Array{2, 6},
		Status:        "partial",
		Summary:       []byte(`{"championships":2,"failed":1}`),
		LastError:     sql.NullString{},
		StartedAt:     started,
		CompletedAt:   sql.NullTime{Time: started.Add(time.Minute), Valid: true},
	}}}
	f := newFixture(t, web.Options{Runs: runs})

	resp, err := http.Get(f.srv.URL + "/api/v1/sync/runs?limit=5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
		Runs  []struct {
			RunID         int64           `json:"run_id"`
			Status        string          `json:"status"`
			Championships []int64         `json:"championships"`
			Summary       json.RawMessage `json:"summary"`
			CompletedAt   *time.Time      `json:"completed_at"`
		} `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Count != 1 || body.Runs[0].RunID != 7 {
		t.Fatalf("expected run 7, got %+v", body)
	}
	if body.Runs[0].Status != "partial" || len(body.Runs[0].Championships) != 2 {
		t.Errorf("unexpected run %+v", body.Runs[0])
	}
	if body.Runs[0].CompletedAt == nil {
		t.Error("expected completed_at")
	}
}

func TestListSyncRuns_NotConfigured(t *testing.T) {
	f := newFixture(t, web.Options{})

	resp, err := http.Get(f.srv.URL + "/api/v1/sync/runs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestCORS_Preflight(t *testing.T) {
	f := newFixture(t, web.Options{CORSOrigins: []string{"http://localhost:3000"}})

	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/calculator", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}
