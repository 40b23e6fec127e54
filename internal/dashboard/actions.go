package dashboard

import (
	"context"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/calc"
	"github.com/fortuna/pitchside/internal/state"
	"go.uber.org/zap"
)

// FindOpportunities searches for 1.25-odds bets, optionally within one championship
func (c *Controller) FindOpportunities(ctx context.Context, championshipID *int) error {
	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderOpportunities)
	search, err := c.api.FindOpportunities(ctx, championshipID)
	if err != nil {
		c.fail(msgOpportunitiesFailed, err)
		return err
	}

	if c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Opportunities = search
		return s
	}) {
		c.notes.Success(msgOpportunitiesOK)
	}
	return nil
}

// AnalyzeMatch requests the model analysis of homeID against awayID.
// Team ids are the backend's api ids; zero means nothing was selected.
func (c *Controller) AnalyzeMatch(ctx context.Context, homeID, awayID int) error {
	if homeID == 0 || awayID == 0 {
		c.notes.Warning(msgSelectBothTeams)
		return ErrTeamsNotSelected
	}
	if homeID == awayID {
		c.notes.Warning(msgSelectDifferent)
		return ErrSameTeam
	}

	c.store.StartLoading()
	defer c.store.StopLoading()

	token := c.store.Begin(loaderAnalysis)
	analysis, err := c.api.AnalyzeMatch(ctx, homeID, awayID)
	if err != nil {
		message := msgAnalysisFailed
		if m, ok := backend.UserMessage(err); ok {
			message = m
		}
		c.log.Warn("match analysis failed",
			zap.Int("home_team_id", homeID),
			zap.Int("away_team_id", awayID),
			zap.String("outcome", backend.Outcome(err)),
			zap.Error(err))
		c.notes.Error(message)
		return err
	}

	if c.commit(token, func(s state.Snapshot) state.Snapshot {
		s.Analysis = analysis
		return s
	}) {
		c.notes.Success(msgAnalysisOK)
	}
	return nil
}

// CalculateBet runs the 1.25-odds bet calculator and stores the result.
// Invalid input clears the result panel.
func (c *Controller) CalculateBet(stake, confidence float64) (*calc.Result, error) {
	result, err := calc.CalculateBet(stake, confidence)
	if err != nil {
		c.notes.Warning(msgInvalidBet)
		result = nil
	}

	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Calculation = result
		return s
	})
	return result, err
}

// AnalyzeSpecificMatch is the per-row analyze action on the matches table
func (c *Controller) AnalyzeSpecificMatch(matchID int) {
	c.log.Debug("analyze match requested", zap.Int("match_id", matchID))
	c.notes.Info(msgNotImplemented)
}
