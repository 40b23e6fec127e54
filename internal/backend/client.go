package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/pitchside/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is where the analysis backend mounts its API
	DefaultBaseURL = "http://localhost:5000/api"

	defaultTimeout      = 30 * time.Second
	defaultSyncInterval = 500 * time.Millisecond

	// maxBodyBytes bounds how much of a response is read
	maxBodyBytes = 8 << 20

	snippetLen = 200
)

// Endpoint names used in errors and metrics
const (
	EndpointTeams           = "football.teams"
	EndpointMatches         = "football.matches"
	EndpointSync            = "football.sync_championship"
	EndpointCalculateStats  = "football.calculate_stats"
	EndpointPerformance     = "odds.performance_tracking"
	EndpointRecommendations = "odds.daily_recommendations"
	EndpointMarketAnalysis  = "odds.market_analysis"
	EndpointOpportunities   = "odds.find_125_opportunities"
	EndpointAnalyzeMatch    = "advanced.analyze_match"
)

// Config configures a Client
type Config struct {
	BaseURL string
	// Timeout bounds each request; zero uses the default.
	Timeout time.Duration
	// SyncInterval spaces consecutive championship syncs; zero uses the default.
	SyncInterval time.Duration
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client talks to the football analysis backend.
// Every call decodes into the endpoint's schema and fails with a typed error
// (*TransportError, *StatusError, *DecodeError or *AppError). There is no retry.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	syncLimiter *rate.Limiter
}

// New creates a backend client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		syncLimiter: rate.NewLimiter(rate.Every(cfg.SyncInterval), 1),
	}
}

// BaseURL returns the API root this client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Teams fetches all teams with their stats
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.do(ctx, EndpointTeams, http.MethodGet, "/football/teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Matches fetches all matches
func (c *Client) Matches(ctx context.Context) ([]Match, error) {
	var matches []Match
	if err := c.do(ctx, EndpointMatches, http.MethodGet, "/football/matches", nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// SyncChampionship asks the backend to pull one championship from the data provider
func (c *Client) SyncChampionship(ctx context.Context, championshipID int) (*SyncResult, error) {
	if err := c.syncLimiter.Wait(ctx); err != nil {
		return nil, &TransportError{Endpoint: EndpointSync, Err: err}
	}

	var result SyncResult
	path := fmt.Sprintf("/football/sync-championship/%d", championshipID)
	if err := c.do(ctx, EndpointSync, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CalculateStats recomputes team statistics on the backend
func (c *Client) CalculateStats(ctx context.Context) (*StatsResult, error) {
	var result StatsResult
	if err := c.do(ctx, EndpointCalculateStats, http.MethodPost, "/football/calculate-stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PerformanceTracking fetches prediction performance metrics
func (c *Client) PerformanceTracking(ctx context.Context) (*PerformanceReport, error) {
	var report PerformanceReport
	if err := c.do(ctx, EndpointPerformance, http.MethodGet, "/odds/performance-tracking", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DailyRecommendations fetches today's recommended bets
func (c *Client) DailyRecommendations(ctx context.Context) (*DailyRecommendations, error) {
	var recs DailyRecommendations
	if err := c.do(ctx, EndpointRecommendations, http.MethodGet, "/odds/daily-recommendations", nil, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// MarketAnalysis fetches recent market statistics and patterns
func (c *Client) MarketAnalysis(ctx context.Context) (*MarketAnalysis, error) {
	var analysis MarketAnalysis
	if err := c.do(ctx, EndpointMarketAnalysis, http.MethodGet, "/odds/market-analysis", nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// FindOpportunities searches for 1.25-odds bets, optionally within one championship
func (c *Client) FindOpportunities(ctx context.Context, championshipID *int) (*OpportunitySearch, error) {
	var search OpportunitySearch
	body := OpportunityRequest{ChampionshipID: championshipID}
	if err := c.do(ctx, EndpointOpportunities, http.MethodPost, "/odds/find-125-opportunities", body, &search); err != nil {
		return nil, err
	}
	return &search, nil
}

// AnalyzeMatch requests the full model analysis of a home/away pairing
func (c *Client) AnalyzeMatch(ctx context.Context, homeTeamID, awayTeamID int) (*MatchAnalysis, error) {
	var analysis MatchAnalysis
	body := AnalysisRequest{HomeTeamID: homeTeamID, AwayTeamID: awayTeamID}
	if err := c.do(ctx, EndpointAnalyzeMatch, http.MethodPost, "/advanced/analyze-match", body, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// do performs one request and records it in metrics
func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, endpoint, method, path, body, out)
	metrics.ObserveBackendRequest(endpoint, Outcome(err), time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, endpoint, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("reading body: %w", err)}
	}

	// Any JSON object with a non-empty "error" is an application failure,
	// whatever the status code.
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	hasEnvelope := json.Unmarshal(raw, &envelope) == nil
	if hasEnvelope && envelope.Error != "" {
		return &AppError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Snippet: snippet(raw), Err: err}
	}

	return nil
}

func snippet(raw []byte) string {
	if len(raw) > snippetLen {
		return string(raw[:snippetLen])
	}
	return string(raw)
}
