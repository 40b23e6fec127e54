package dashboard

import (
	"context"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/state"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Init runs the startup sequence: teams, matches, then the dashboard
func (c *Controller) Init(ctx context.Context) {
	_ = c.LoadTeams(ctx)
	_ = c.LoadMatches(ctx)
	_ = c.LoadDashboard(ctx)
}

// LoadDashboard fetches teams, matches and performance concurrently,
// refreshes the headline stats, then today's opportunities.
func (c *Controller) LoadDashboard(ctx context.Context) error {
	return c.loadDashboard(ctx, c.fail)
}

func (c *Controller) loadDashboard(ctx context.Context, fail failFunc) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderDashboard)

	var (
		teams       []backend.Team
		matches     []backend.Match
		performance *backend.PerformanceReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = c.api.Teams(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = c.api.Matches(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		performance, err = c.api.PerformanceTracking(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		fail(msgDashboardFailed, err)
		return err
	}

	stats := state.DashboardStats{
		TotalTeams:   len(teams),
		TotalMatches: len(matches),
	}
	if performance != nil && performance.OverallMetrics != nil {
		stats.WinRate = performance.OverallMetrics.WinRate
		stats.ROI = performance.OverallMetrics.ROI
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Stats = stats
		return s
	})

	return c.LoadTodayOpportunities(ctx)
}

// LoadTodayOpportunities refreshes the daily recommendations.
// A failure leaves an error placeholder instead of a toast.
func (c *Controller) LoadTodayOpportunities(ctx context.Context) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderRecommendations)
	recs, err := c.api.DailyRecommendations(ctx)
	if err != nil {
		c.log.Warn("loading daily recommendations", zap.String("outcome", backend.Outcome(err)), zap.Error(err))
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Recommendations = recs
		s.RecommendationsErr = err != nil
		return s
	})
	return err
}

// LoadTeams fetches and stores all teams
func (c *Controller) LoadTeams(ctx context.Context) error {
	return c.loadTeams(ctx, c.fail)
}

func (c *Controller) loadTeams(ctx context.Context, fail failFunc) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderTeams)
	teams, err := c.api.Teams(ctx)
	if err != nil {
		fail(msgTeamsFailed, err)
		return err
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Teams = teams
		return s
	})
	return nil
}

// LoadMatches fetches and stores all matches
func (c *Controller) LoadMatches(ctx context.Context) error {
	return c.loadMatches(ctx, c.fail)
}

func (c *Controller) loadMatches(ctx context.Context, fail failFunc) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderMatches)
	matches, err := c.api.Matches(ctx)
	if err != nil {
		fail(msgMatchesFailed, err)
		return err
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Matches = matches
		return s
	})
	return nil
}

// LoadMarketAnalysis fetches the market statistics shown on the odds page.
// A failure leaves an error placeholder instead of a toast.
func (c *Controller) LoadMarketAnalysis(ctx context.Context) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderMarket)
	analysis, err := c.api.MarketAnalysis(ctx)
	if err != nil {
		c.log.Warn("loading market analysis", zap.String("outcome", backend.Outcome(err)), zap.Error(err))
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.MarketAnalysis = analysis
		s.MarketAnalysisErr = err != nil
		return s
	})
	return err
}

// LoadPerformance fetches the prediction performance report
func (c *Controller) LoadPerformance(ctx context.Context) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderPerformance)
	report, err := c.api.PerformanceTracking(ctx)
	if err != nil {
		c.fail(msgPerformanceFailed, err)
		return err
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Performance = report
		return s
	})
	return nil
}

// loadTeamSelectors makes sure the analysis selectors have teams to offer.
// Failures are only logged.
func (c *Controller) loadTeamSelectors(ctx context.Context) {
	if len(c.store.Snapshot().Teams) > 0 {
		return
	}

	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderTeams)
	teams, err := c.api.Teams(ctx)
	if err != nil {
		c.log.Warn("loading team selectors", zap.String("outcome", backend.Outcome(err)), zap.Error(err))
		return
	}

	c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Teams = teams
		return s
	})
}
