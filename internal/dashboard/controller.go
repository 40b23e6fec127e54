package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/charts"
	"github.com/fortuna/pitchside/internal/filter"
	"github.com/fortuna/pitchside/internal/metrics"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/render"
	"github.com/fortuna/pitchside/internal/state"
	"github.com/fortuna/pitchside/internal/syncjob"
	"go.uber.org/zap"
)

var (
	// ErrUnknownSection is returned by Switch for a name outside the menu
	ErrUnknownSection = errors.New("unknown section")
	// ErrTeamsNotSelected means the analysis form lacks a home or away team
	ErrTeamsNotSelected = errors.New("both teams must be selected")
	// ErrSameTeam means the same team was picked for both sides
	ErrSameTeam = errors.New("home and away teams must differ")
)

// Loader names used for generation tokens
const (
	loaderDashboard       = "dashboard"
	loaderTeams           = "teams"
	loaderMatches         = "matches"
	loaderRecommendations = "recommendations"
	loaderMarket          = "market_analysis"
	loaderPerformance     = "performance"
	loaderOpportunities   = "opportunities"
	loaderAnalysis        = "analysis"
)

// Backend is the part of the analysis API the dashboard reads
type Backend interface {
	syncjob.Client
	Teams(ctx context.Context) ([]backend.Team, error)
	Matches(ctx context.Context) ([]backend.Match, error)
	PerformanceTracking(ctx context.Context) (*backend.PerformanceReport, error)
	DailyRecommendations(ctx context.Context) (*backend.DailyRecommendations, error)
	MarketAnalysis(ctx context.Context) (*backend.MarketAnalysis, error)
	FindOpportunities(ctx context.Context, championshipID *int) (*backend.OpportunitySearch, error)
	AnalyzeMatch(ctx context.Context, homeTeamID, awayTeamID int) (*backend.MatchAnalysis, error)
}

// Config holds the controller settings
type Config struct {
	// Championships synced by Sync, in order.
	Championships []int
}

// DefaultChampionships are synced when none are configured
var DefaultChampionships = []int{2, 6, 10}

// Controller drives section navigation and every load and action on the dashboard.
// Failures are logged and turned into toasts here; callers only render the resulting state.
type Controller struct {
	api    Backend
	store  *state.Store
	notes  *notify.Center
	runner *syncjob.Runner
	charts charts.Set
	cfg    Config
	log    *zap.Logger
}

// NewController wires a controller. runner may be nil, in which case one without
// an audit recorder is built around api.
func NewController(api Backend, store *state.Store, notes *notify.Center, runner *syncjob.Runner, cfg Config, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Championships) == 0 {
		cfg.Championships = DefaultChampionships
	}
	if runner == nil {
		runner = syncjob.NewRunner(api, nil, log)
	}
	return &Controller{
		api:    api,
		store:  store,
		notes:  notes,
		runner: runner,
		charts: charts.Defaults(),
		cfg:    cfg,
		log:    log,
	}
}

// Page returns everything needed to render the full dashboard
func (c *Controller) Page() render.PageData {
	return render.PageData{
		State:         c.store.Snapshot(),
		Toasts:        c.notes.Active(time.Now()),
		Charts:        c.charts,
		Championships: c.cfg.Championships,
	}
}

// Snapshot returns the current dashboard state
func (c *Controller) Snapshot() state.Snapshot {
	return c.store.Snapshot()
}

// Toasts returns the toasts still on screen
func (c *Controller) Toasts() []notify.Toast {
	return c.notes.Active(time.Now())
}

// Switch makes name the active section and runs its loader.
// Switching to the section already shown runs the loader again.
func (c *Controller) Switch(ctx context.Context, name string) (render.PageData, error) {
	section, ok := state.ParseSection(name)
	if !ok {
		return c.Page(), fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}

	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.CurrentSection = section
		return s
	})
	c.log.Debug("section switched", zap.String("section", string(section)))

	switch section {
	case state.SectionDashboard:
		_ = c.LoadDashboard(ctx)
	case state.SectionOdds125:
		_ = c.LoadMarketAnalysis(ctx)
	case state.SectionAnalysis:
		c.loadTeamSelectors(ctx)
	case state.SectionPerformance:
		_ = c.LoadPerformance(ctx)
	}
	// teams and matches re-render what is already stored

	// another switch may have landed while the loader ran
	page := c.Page()
	page.State.CurrentSection = section
	return page, nil
}

// TeamsView returns the stored teams matching query
func (c *Controller) TeamsView(query string) []backend.Team {
	return filter.Teams(c.store.Snapshot().Teams, query)
}

// MatchesView returns the stored matches matching the championship and status filters
func (c *Controller) MatchesView(championship, status string) []backend.Match {
	return filter.Matches(c.store.Snapshot().Matches, championship, status)
}

// commit applies fn if t is still current, recording a discarded stale load
func (c *Controller) commit(t state.Token, fn func(state.Snapshot) state.Snapshot) bool {
	if c.store.Commit(t, fn) {
		return true
	}
	metrics.StaleLoadDiscarded(t.Loader())
	c.log.Debug("stale load discarded", zap.String("loader", t.Loader()))
	return false
}

// failFunc reports a failed load
type failFunc func(message string, err error)

// fail logs err and shows message as an error toast
func (c *Controller) fail(message string, err error) {
	c.logFailure(message, err)
	c.notes.Error(message)
}

func (c *Controller) logFailure(message string, err error) {
	c.log.Warn(message,
		zap.String("outcome", backend.Outcome(err)),
		zap.Error(err))
}
