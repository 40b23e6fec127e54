package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Match status values as reported by the analysis backend.
const (
	StatusFinished  = "finalizado"
	StatusLive      = "ao-vivo"
	StatusScheduled = "agendado"
)

// Timestamp decodes the backend's ISO timestamps, which may omit the zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// UnmarshalJSON accepts null, RFC3339 and zone-less ISO timestamps
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" || raw == "N/A" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// MarshalJSON writes the zero value as null
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// TeamStats holds the aggregated numbers computed by calculate-stats
type TeamStats struct {
	MatchesPlayed         int       `json:"matches_played"`
	Wins                  int       `json:"wins"`
	Draws                 int       `json:"draws"`
	Losses                int       `json:"losses"`
	GoalsFor              int       `json:"goals_for"`
	GoalsAgainst          int       `json:"goals_against"`
	GoalsPerMatch         float64   `json:"goals_per_match"`
	GoalsConcededPerMatch float64   `json:"goals_conceded_per_match"`
	WinPercentage         float64   `json:"win_percentage"`
	LastUpdated           Timestamp `json:"last_updated"`
}

// Team is a club as returned by GET /football/teams
type Team struct {
	ID           int        `json:"id"`
	APIID        int        `json:"api_id"`
	Name         string     `json:"name"`
	PopularName  string     `json:"popular_name"`
	Abbreviation string     `json:"abbreviation"`
	LogoURL      string     `json:"logo_url"`
	Stats        *TeamStats `json:"stats"`
}

// Match is a fixture as returned by GET /football/matches
type Match struct {
	ID               int       `json:"id"`
	APIID            int       `json:"api_id"`
	HomeTeam         string    `json:"home_team"`
	AwayTeam         string    `json:"away_team"`
	HomeScore        int       `json:"home_score"`
	AwayScore        int       `json:"away_score"`
	Status           string    `json:"status"`
	MatchDate        Timestamp `json:"match_date"`
	ChampionshipName string    `json:"championship_name"`
}

// Finished reports whether the score is final
func (m Match) Finished() bool {
	return m.Status == StatusFinished
}

// SyncResult is returned by POST /football/sync-championship/{id}
type SyncResult struct {
	Message       string `json:"message"`
	TeamsSynced   int    `json:"teams_synced"`
	MatchesSynced int    `json:"matches_synced"`
}

// StatsResult is returned by POST /football/calculate-stats
type StatsResult struct {
	Message      string `json:"message"`
	TeamsUpdated int    `json:"teams_updated"`
}

// OverallMetrics summarizes prediction performance over the tracked period
type OverallMetrics struct {
	TotalPredictions  int     `json:"total_predictions"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	WinRate           float64 `json:"win_rate"`
	ROI               float64 `json:"roi"`
	ProfitLoss        float64 `json:"profit_loss"`
	AverageConfidence float64 `json:"average_confidence"`
}

// MonthlyTrend describes the direction of the tracked results
type MonthlyTrend struct {
	Improving      bool   `json:"improving"`
	TrendDirection string `json:"trend_direction"`
	Consistency    string `json:"consistency"`
}

// PerformanceReport is returned by GET /odds/performance-tracking
type PerformanceReport struct {
	Message        string          `json:"message,omitempty"`
	Period         string          `json:"period"`
	OverallMetrics *OverallMetrics `json:"overall_metrics"`
	MonthlyTrend   *MonthlyTrend   `json:"monthly_trend"`
}

// Recommendation is a suggested bet from the daily recommendations
type Recommendation struct {
	Match           string   `json:"match"`
	BetType         string   `json:"bet_type"`
	Confidence      float64  `json:"confidence"`
	Stake           float64  `json:"stake"`
	PotentialProfit float64  `json:"potential_profit"`
	ExpectedValue   float64  `json:"expected_value"`
	RiskLevel       string   `json:"risk_level"`
	Factors         []string `json:"factors"`
}

// PortfolioSummary aggregates the day's recommended stakes
type PortfolioSummary struct {
	TotalStake     float64 `json:"total_stake"`
	ExpectedProfit float64 `json:"expected_profit"`
	ROIExpectation float64 `json:"roi_expectation"`
	RiskAssessment string  `json:"risk_assessment"`
}

// DailyRecommendations is returned by GET /odds/daily-recommendations
type DailyRecommendations struct {
	Message              string            `json:"message,omitempty"`
	Date                 string            `json:"date"`
	TotalRecommendations int               `json:"total_recommendations"`
	Recommendations      []Recommendation  `json:"recommendations"`
	PortfolioSummary     *PortfolioSummary `json:"portfolio_summary"`
}

// Opportunity is a high-confidence bet targeting 1.25 odds
type Opportunity struct {
	Match             string   `json:"match"`
	HomeTeam          string   `json:"home_team"`
	AwayTeam          string   `json:"away_team"`
	RecommendedBet    string   `json:"recommended_bet"`
	Confidence        float64  `json:"confidence"`
	Probability       float64  `json:"probability"`
	ExpectedValue     float64  `json:"expected_value"`
	RiskLevel         string   `json:"risk_level"`
	SupportingFactors []string `json:"supporting_factors"`
	MatchDate         string   `json:"match_date"`
}

// OpportunitySummary describes the sample behind an opportunity search
type OpportunitySummary struct {
	MatchesAnalyzed int     `json:"matches_analyzed"`
	TeamsAnalyzed   int     `json:"teams_analyzed"`
	AvgConfidence   float64 `json:"avg_confidence"`
	LowRiskCount    int     `json:"low_risk_count"`
	MediumRiskCount int     `json:"medium_risk_count"`
}

// OpportunitySearch is returned by POST /odds/find-125-opportunities
type OpportunitySearch struct {
	Message            string              `json:"message,omitempty"`
	TotalOpportunities int                 `json:"total_opportunities"`
	HighConfidenceBets []Opportunity       `json:"high_confidence_bets"`
	AnalysisSummary    *OpportunitySummary `json:"analysis_summary"`
}

// OpportunityRequest is the body of POST /odds/find-125-opportunities
type OpportunityRequest struct {
	ChampionshipID *int `json:"championship_id,omitempty"`
}

// MarketStatistics holds outcome frequencies over the analysis period
type MarketStatistics struct {
	HomeWins             int     `json:"home_wins"`
	Draws                int     `json:"draws"`
	AwayWins             int     `json:"away_wins"`
	HomeWinPercentage    float64 `json:"home_win_percentage"`
	DrawPercentage       float64 `json:"draw_percentage"`
	AwayWinPercentage    float64 `json:"away_win_percentage"`
	AverageGoalsPerMatch float64 `json:"average_goals_per_match"`
	Over25Percentage     float64 `json:"over_25_percentage"`
	BTTSPercentage       float64 `json:"btts_percentage"`
}

// MarketPattern is a recurring outcome pattern the backend identified
type MarketPattern struct {
	Pattern     string  `json:"pattern"`
	Percentage  float64 `json:"percentage"`
	Opportunity string  `json:"opportunity"`
	Confidence  string  `json:"confidence"`
}

// MarketOpportunities is the backend's overall reading of the market
type MarketOpportunities struct {
	BestMarkets      []string `json:"best_markets_for_125_odds"`
	MarketEfficiency string   `json:"market_efficiency"`
	Recommendation   string   `json:"recommendation"`
}

// MarketAnalysis is returned by GET /odds/market-analysis
type MarketAnalysis struct {
	AnalysisPeriod      string               `json:"analysis_period"`
	SampleSize          int                  `json:"sample_size"`
	MarketStatistics    *MarketStatistics    `json:"market_statistics"`
	IdentifiedPatterns  []MarketPattern      `json:"identified_patterns"`
	MarketOpportunities *MarketOpportunities `json:"market_opportunities"`
}

// AnalysisRequest is the body of POST /advanced/analyze-match
type AnalysisRequest struct {
	HomeTeamID int `json:"home_team_id"`
	AwayTeamID int `json:"away_team_id"`
}

// MatchInfo names the two sides of an analyzed match
type MatchInfo struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// TeamMetrics are the model outputs for one side of a match
type TeamMetrics struct {
	EloRating             float64 `json:"elo_rating"`
	FormIndex             float64 `json:"form_index"`
	GoalsPerMatch         float64 `json:"goals_per_match"`
	GoalsConcededPerMatch float64 `json:"goals_conceded_per_match"`
}

// MatchProbabilities are outcome probabilities in percent
type MatchProbabilities struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// MatchRecommendation is the value bet the backend suggests for a match.
// Confidence and ExpectedValue are fractions, not percentages.
type MatchRecommendation struct {
	Outcome       string  `json:"outcome"`
	Confidence    float64 `json:"confidence"`
	Odds          float64 `json:"odds"`
	ExpectedValue float64 `json:"expected_value"`
}

// MatchAnalysis is returned by POST /advanced/analyze-match
type MatchAnalysis struct {
	Error              string               `json:"error,omitempty"`
	MatchInfo          MatchInfo            `json:"match_info"`
	HomeTeamMetrics    TeamMetrics          `json:"home_team_metrics"`
	AwayTeamMetrics    TeamMetrics          `json:"away_team_metrics"`
	MatchProbabilities MatchProbabilities   `json:"match_probabilities"`
	Recommendation     *MatchRecommendation `json:"recommendation"`
}
