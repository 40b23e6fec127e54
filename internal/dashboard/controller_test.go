package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/dashboard"
	"github.com/fortuna/pitchside/internal/notify"
	"github.com/fortuna/pitchside/internal/render"
	"github.com/fortuna/pitchside/internal/state"
	"go.uber.org/zap"
)

var errDown = &backend.TransportError{Endpoint: "test", Err: errors.New("connection refused")}

type fakeBackend struct {
	mu sync.Mutex

	teams       []backend.Team
	matches     []backend.Match
	performance *backend.PerformanceReport
	recs        *backend.DailyRecommendations
	market      *backend.MarketAnalysis
	search      *backend.OpportunitySearch
	analysis    *backend.MatchAnalysis

	teamsErr       error
	matchesErr     error
	performanceErr error
	recsErr        error
	marketErr      error
	searchErr      error
	analysisErr    error
	syncErr        map[int]error
	statsErr       error

	// teamsHook and performanceHook, when set, replace Teams and PerformanceTracking.
	teamsHook       func(ctx context.Context) ([]backend.Team, error)
	performanceHook func(ctx context.Context) (*backend.PerformanceReport, error)

	calls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		teams: []backend.Team{
			{ID: 1, APIID: 101, Name: "Sport Lisboa e Benfica", PopularName: "Benfica", Abbreviation: "SLB"},
			{ID: 2, APIID: 102, Name: "Futebol Clube do Porto", PopularName: "Porto", Abbreviation: "FCP"},
		},
		matches: []backend.Match{
			{ID: 1, HomeTeam: "Benfica", AwayTeam: "Porto", Status: backend.StatusFinished, ChampionshipName: "Liga Portugal"},
			{ID: 2, HomeTeam: "Porto", AwayTeam: "Benfica", Status: backend.StatusScheduled, ChampionshipName: "Taça de Portugal"},
			{ID: 3, HomeTeam: "Benfica", AwayTeam: "Porto", Status: backend.StatusLive, ChampionshipName: "Liga Portugal"},
		},
		performance: &backend.PerformanceReport{
			OverallMetrics: &backend.OverallMetrics{WinRate: 82.5, ROI: 12.3},
		},
		recs:     &backend.DailyRecommendations{TotalRecommendations: 1, Recommendations: []backend.Recommendation{{Match: "Benfica vs Porto", Confidence: 86}}},
		market:   &backend.MarketAnalysis{SampleSize: 50},
		search:   &backend.OpportunitySearch{TotalOpportunities: 1},
		analysis: &backend.MatchAnalysis{MatchInfo: backend.MatchInfo{HomeTeam: "Benfica", AwayTeam: "Porto"}},
		syncErr:  map[int]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Teams(ctx context.Context) ([]backend.Team, error) {
	f.record("teams")
	if f.teamsHook != nil {
		return f.teamsHook(ctx)
	}
	return f.teams, f.teamsErr
}

func (f *fakeBackend) Matches(ctx context.Context) ([]backend.Match, error) {
	f.record("matches")
	return f.matches, f.matchesErr
}

func (f *fakeBackend) PerformanceTracking(ctx context.Context) (*backend.PerformanceReport, error) {
	f.record("performance")
	if f.performanceHook != nil {
		return f.performanceHook(ctx)
	}
	if f.performanceErr != nil {
		return nil, f.performanceErr
	}
	return f.performance, nil
}

func (f *fakeBackend) DailyRecommendations(ctx context.Context) (*backend.DailyRecommendations, error) {
	f.record("recommendations")
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	return f.recs, nil
}

func (f *fakeBackend) MarketAnalysis(ctx context.Context) (*backend.MarketAnalysis, error) {
	f.record("market")
	if f.marketErr != nil {
		return nil, f.marketErr
	}
	return f.market, nil
}

func (f *fakeBackend) FindOpportunities(ctx context.Context, championshipID *int) (*backend.OpportunitySearch, error) {
	f.record("opportunities")
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

func (f *fakeBackend) AnalyzeMatch(ctx context.Context, homeTeamID, awayTeamID int) (*backend.MatchAnalysis, error) {
	f.record("analyze")
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeBackend) SyncChampionship(ctx context.Context, championshipID int) (*backend.SyncResult, error) {
	f.record("sync")
	if err := f.syncErr[championshipID]; err != nil {
		return nil, err
	}
	return &backend.SyncResult{TeamsSynced: 20, MatchesSynced: 380}, nil
}

func (f *fakeBackend) CalculateStats(ctx context.Context) (*backend.StatsResult, error) {
	f.record("stats")
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &backend.StatsResult{TeamsUpdated: 20}, nil
}

func newController(api *fakeBackend) (*dashboard.Controller, *state.Store, *notify.Center) {
	store := state.NewStore()
	notes := notify.NewCenter(zap.NewNop(), time.Minute)
	ctrl := dashboard.NewController(api, store, notes, nil, dashboard.Config{}, zap.NewNop())
	return ctrl, store, notes
}

func toastsOf(notes *notify.Center, severity notify.Severity) []notify.Toast {
	var out []notify.Toast
	for _, t := range notes.Active(time.Now()) {
		if t.Severity == severity {
			out = append(out, t)
		}
	}
	return out
}

func TestLoadDashboard_Success(t *testing.T) {
	api := newFakeBackend()
	ctrl, store, notes := newController(api)

	if err := ctrl.LoadDashboard(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Stats.TotalTeams != 2 {
		t.Errorf("expected 2 teams, got %d", snap.Stats.TotalTeams)
	}
	if snap.Stats.TotalMatches != 3 {
		t.Errorf("expected 3 matches, got %d", snap.Stats.TotalMatches)
	}
	if snap.Stats.WinRate != 82.5 || snap.Stats.ROI != 12.3 {
		t.Errorf("expected win rate 82.5 and roi 12.3, got %v and %v", snap.Stats.WinRate, snap.Stats.ROI)
	}
	if snap.Recommendations == nil || snap.RecommendationsErr {
		t.Error("expected today's recommendations to be loaded")
	}
	if snap.Loading {
		t.Error("expected loading to be hidden")
	}
	if n := len(notes.Active(time.Now())); n != 0 {
		t.Errorf("expected no toasts, got %d", n)
	}
}

func TestLoadDashboard_MissingMetricsRenderZero(t *testing.T) {
	api := newFakeBackend()
	api.performance = &backend.PerformanceReport{Message: "sem dados"}
	ctrl, store, _ := newController(api)

	_ = ctrl.LoadDashboard(context.Background())

	stats := store.Snapshot().Stats
	if stats.WinRate != 0 || stats.ROI != 0 {
		t.Errorf("expected zero win rate and roi, got %v and %v", stats.WinRate, stats.ROI)
	}
}

func TestLoadDashboard_FailureShowsOneErrorToast(t *testing.T) {
	api := newFakeBackend()
	api.performanceErr = errDown
	ctrl, store, notes := newController(api)

	if err := ctrl.LoadDashboard(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if store.Snapshot().Loading {
		t.Error("expected loading to be hidden after failure")
	}

	errs := toastsOf(notes, notify.SeverityError)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error toast, got %d", len(errs))
	}
	if errs[0].Message != "Erro ao carregar dados do dashboard" {
		t.Errorf("unexpected toast message %q", errs[0].Message)
	}
	if api.count("recommendations") != 0 {
		t.Error("expected today's opportunities not to load after a failure")
	}
}

func TestLoaders_FailureShowsOneErrorToast(t *testing.T) {
	tests := []struct {
		name    string
		breakIt func(*fakeBackend)
		load    func(*dashboard.Controller) error
		message string
	}{
		{
			name:    "teams",
			breakIt: func(f *fakeBackend) { f.teamsErr = errDown },
			load:    func(c *dashboard.Controller) error { return c.LoadTeams(context.Background()) },
			message: "Erro ao carregar equipas",
		},
		{
			name:    "matches",
			breakIt: func(f *fakeBackend) { f.matchesErr = &backend.DecodeError{Endpoint: "matches", Snippet: "<html>", Err: errors.New("invalid character")} },
			load:    func(c *dashboard.Controller) error { return c.LoadMatches(context.Background()) },
			message: "Erro ao carregar partidas",
		},
		{
			name:    "performance",
			breakIt: func(f *fakeBackend) { f.performanceErr = &backend.StatusError{Endpoint: "perf", StatusCode: 500} },
			load:    func(c *dashboard.Controller) error { return c.LoadPerformance(context.Background()) },
			message: "Erro ao carregar dados de performance",
		},
		{
			name:    "opportunities",
			breakIt: func(f *fakeBackend) { f.searchErr = errDown },
			load:    func(c *dashboard.Controller) error { return c.FindOpportunities(context.Background(), nil) },
			message: "Erro ao buscar oportunidades",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeBackend()
			tt.breakIt(api)
			ctrl, store, notes := newController(api)

			if err := tt.load(ctrl); err == nil {
				t.Fatal("expected error")
			}
			if store.Snapshot().Loading {
				t.Error("expected loading to be hidden")
			}
			all := notes.Active(time.Now())
			if len(all) != 1 {
				t.Fatalf("expected exactly 1 toast, got %d", len(all))
			}
			if all[0].Severity != notify.SeverityError || all[0].Message != tt.message {
				t.Errorf("expected error toast %q, got %s %q", tt.message, all[0].Severity, all[0].Message)
			}
		})
	}
}

func TestPlaceholderLoaders_FailWithoutToast(t *testing.T) {
	api := newFakeBackend()
	api.recsErr = errDown
	api.marketErr = errDown
	ctrl, store, notes := newController(api)

	_ = ctrl.LoadTodayOpportunities(context.Background())
	_ = ctrl.LoadMarketAnalysis(context.Background())

	snap := store.Snapshot()
	if !snap.RecommendationsErr || snap.Recommendations != nil {
		t.Error("expected recommendations error placeholder")
	}
	if !snap.MarketAnalysisErr || snap.MarketAnalysis != nil {
		t.Error("expected market analysis error placeholder")
	}
	if n := len(notes.Active(time.Now())); n != 0 {
		t.Errorf("expected no toasts, got %d", n)
	}

	api.marketErr = nil
	_ = ctrl.LoadMarketAnalysis(context.Background())
	if store.Snapshot().MarketAnalysisErr {
		t.Error("expected placeholder to clear after a successful load")
	}
}

func TestInit_LoadsTeamsMatchesDashboard(t *testing.T) {
	api := newFakeBackend()
	ctrl, store, _ := newController(api)

	ctrl.Init(context.Background())

	snap := store.Snapshot()
	if len(snap.Teams) != 2 || len(snap.Matches) != 3 {
		t.Errorf("expected 2 teams and 3 matches, got %d and %d", len(snap.Teams), len(snap.Matches))
	}
	if snap.Stats.TotalTeams != 2 {
		t.Errorf("expected dashboard stats to be loaded, got %+v", snap.Stats)
	}
	if snap.Loading {
		t.Error("expected loading to be hidden")
	}
}

func TestViews_DoNotModifyStore(t *testing.T) {
	api := newFakeBackend()
	ctrl, store, _ := newController(api)
	ctrl.Init(context.Background())

	teams := ctrl.TeamsView("porto")
	if len(teams) != 1 || teams[0].PopularName != "Porto" {
		t.Errorf("expected only Porto, got %+v", teams)
	}
	if got := ctrl.TeamsView(""); len(got) != 2 {
		t.Errorf("expected empty query to return all teams, got %d", len(got))
	}

	matches := ctrl.MatchesView("Liga", backend.StatusLive)
	if len(matches) != 1 || matches[0].ID != 3 {
		t.Errorf("expected match 3, got %+v", matches)
	}

	snap := store.Snapshot()
	if len(snap.Teams) != 2 || len(snap.Matches) != 3 {
		t.Errorf("expected stored collections untouched, got %d teams and %d matches", len(snap.Teams), len(snap.Matches))
	}
}

func TestCalculateBet(t *testing.T) {
	ctrl, store, notes := newController(newFakeBackend())

	result, err := ctrl.CalculateBet(100, 85)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PotentialProfit.StringFixed(2) != "25.00" || result.ExpectedValue.StringFixed(2) != "6.25" || result.ROI.StringFixed(2) != "6.25" {
		t.Errorf("expected 25.00 / 6.25 / 6.25, got %s / %s / %s", result.PotentialProfit, result.ExpectedValue, result.ROI)
	}
	if store.Snapshot().Calculation == nil {
		t.Error("expected calculation to be stored")
	}
	if n := len(notes.Active(time.Now())); n != 0 {
		t.Errorf("expected no toasts, got %d", n)
	}
}

func TestCalculateBet_InvalidInput(t *testing.T) {
	ctrl, store, notes := newController(newFakeBackend())
	_, _ = ctrl.CalculateBet(100, 85)

	result, err := ctrl.CalculateBet(0, 50)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if result != nil {
		t.Error("expected no result")
	}
	if store.Snapshot().Calculation != nil {
		t.Error("expected result panel to be cleared")
	}

	warnings := toastsOf(notes, notify.SeverityWarning)
	if len(warnings) != 1 || warnings[0].Message != "Por favor, insira valores válidos" {
		t.Errorf("expected one validation warning, got %+v", warnings)
	}
}

func TestAnalyzeMatch_ValidationBeforeRequest(t *testing.T) {
	tests := []struct {
		name    string
		home    int
		away    int
		wantErr error
		message string
	}{
		{"same team", 101, 101, dashboard.ErrSameTeam, "Por favor, selecione equipas diferentes"},
		{"missing home", 0, 102, dashboard.ErrTeamsNotSelected, "Por favor, selecione ambas as equipas"},
		{"missing away", 101, 0, dashboard.ErrTeamsNotSelected, "Por favor, selecione ambas as equipas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeBackend()
			ctrl, _, notes := newController(api)

			err := ctrl.AnalyzeMatch(context.Background(), tt.home, tt.away)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if api.count("analyze") != 0 {
				t.Error("expected no request to be made")
			}
			warnings := toastsOf(notes, notify.SeverityWarning)
			if len(warnings) != 1 || warnings[0].Message != tt.message {
				t.Errorf("expected warning %q, got %+v", tt.message, warnings)
			}
		})
	}
}

func TestAnalyzeMatch_Success(t *testing.T) {
	api := newFakeBackend()
	ctrl, store, notes := newController(api)

	if err := ctrl.AnalyzeMatch(context.Background(), 101, 102); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Snapshot().Analysis == nil {
		t.Error("expected analysis to be stored")
	}
	success := toastsOf(notes, notify.SeveritySuccess)
	if len(success) != 1 || success[0].Message != "Análise concluída com sucesso" {
		t.Errorf("expected success toast, got %+v", success)
	}
}

func TestAnalyzeMatch_BackendErrorMessage(t *testing.T) {
	api := newFakeBackend()
	api.analysisErr = &backend.AppError{Endpoint: backend.EndpointAnalyzeMatch, StatusCode: 200, Message: "Equipa não encontrada"}
	ctrl, store, notes := newController(api)

	if err := ctrl.AnalyzeMatch(context.Background(), 101, 102); err == nil {
		t.Fatal("expected error")
	}
	errs := toastsOf(notes, notify.SeverityError)
	if len(errs) != 1 || errs[0].Message != "Equipa não encontrada" {
		t.Errorf("expected backend message toast, got %+v", errs)
	}
	if store.Snapshot().Loading {
		t.Error("expected loading to be hidden")
	}
}

func TestAnalyzeMatch_TransportErrorGenericMessage(t *testing.T) {
	api := newFakeBackend()
	api.analysisErr = errDown
	ctrl, _, notes := newController(api)

	_ = ctrl.AnalyzeMatch(context.Background(), 101, 102)

	errs := toastsOf(notes, notify.SeverityError)
	if len(errs) != 1 || errs[0].Message != "Erro ao analisar partida" {
		t.Errorf("expected generic error toast, got %+v", errs)
	}
}

func TestSwitch_UnknownSection(t *testing.T) {
	ctrl, store, _ := newController(newFakeBackend())

	_, err := ctrl.Switch(context.Background(), "settings")
	if !errors.Is(err, dashboard.ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
	if store.Snapshot().CurrentSection != state.SectionDashboard {
		t.Errorf("expected section unchanged, got %s", store.Snapshot().CurrentSection)
	}
}

func TestSwitch_RunsSectionLoader(t *testing.T) {
	tests := []struct {
		section string
		call    string
	}{
		{"dashboard", "performance"},
		{"odds125", "market"},
		{"analysis", "teams"},
		{"performance", "performance"},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			api := newFakeBackend()
			ctrl, _, _ := newController(api)

			page, err := ctrl.Switch(context.Background(), tt.section)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(page.State.CurrentSection) != tt.section {
				t.Errorf("expected section %s, got %s", tt.section, page.State.CurrentSection)
			}
			if api.count(tt.call) == 0 {
				t.Errorf("expected %s to be fetched", tt.call)
			}
		})
	}
}

func TestSwitch_TeamsAndMatchesUseStoredData(t *testing.T) {
	api := newFakeBackend()
	ctrl, _, _ := newController(api)

	for _, name := range []string{"teams", "matches"} {
		if _, err := ctrl.Switch(context.Background(), name); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := api.count("teams") + api.count("matches"); n != 0 {
		t.Errorf("expected no fetches, got %d", n)
	}
}

func TestSwitch_Reentrant(t *testing.T) {
	api := newFakeBackend()
	ctrl, _, _ := newController(api)

	_, _ = ctrl.Switch(context.Background(), "performance")
	_, _ = ctrl.Switch(context.Background(), "performance")

	if n := api.count("performance"); n != 2 {
		t.Errorf("expected loader to run twice, got %d", n)
	}
}

func TestSwitch_ConcurrentSwitchKeepsRequestedSection(t *testing.T) {
	api := newFakeBackend()
	entered := make(chan struct{})
	release := make(chan struct{})
	report := api.performance
	api.performanceHook = func(ctx context.Context) (*backend.PerformanceReport, error) {
		close(entered)
		<-release
		return report, nil
	}

	ctrl, store, _ := newController(api)

	type result struct {
		page render.PageData
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := ctrl.Switch(context.Background(), "performance")
		done <- result{page, err}
	}()

	<-entered
	teamsPage, err := ctrl.Switch(context.Background(), "teams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	res := <-done

	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.page.State.CurrentSection != state.SectionPerformance {
		t.Errorf("expected performance page, got %s", res.page.State.CurrentSection)
	}
	if teamsPage.State.CurrentSection != state.SectionTeams {
		t.Errorf("expected teams page, got %s", teamsPage.State.CurrentSection)
	}
	if store.Snapshot().CurrentSection != state.SectionTeams {
		t.Errorf("expected last switch to stay current, got %s", store.Snapshot().CurrentSection)
	}
}

func TestLoadTeams_StaleResultDiscarded(t *testing.T) {
	api := newFakeBackend()
	release := make(chan struct{})
	entered := make(chan struct{})
	var first sync.Once

	api.teamsHook = func(ctx context.Context) ([]backend.Team, error) {
		slow := false
		first.Do(func() { slow = true })
		if slow {
			close(entered)
			<-release
			return []backend.Team{{ID: 99, PopularName: "Old"}}, nil
		}
		return []backend.Team{{ID: 1, PopularName: "New"}}, nil
	}

	ctrl, store, _ := newController(api)

	done := make(chan struct{})
	go func() {
		_ = ctrl.LoadTeams(context.Background())
		close(done)
	}()

	<-entered
	if err := ctrl.LoadTeams(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	<-done

	teams := store.Snapshot().Teams
	if len(teams) != 1 || teams[0].PopularName != "New" {
		t.Errorf("expected newest load to win, got %+v", teams)
	}
	if store.Snapshot().Loading {
		t.Error("expected loading to be hidden once both loads finish")
	}
}

func TestAnalyzeSpecificMatch(t *testing.T) {
	ctrl, _, notes := newController(newFakeBackend())

	ctrl.AnalyzeSpecificMatch(7)

	infos := toastsOf(notes, notify.SeverityInfo)
	if len(infos) != 1 || infos[0].Message != "Funcionalidade em desenvolvimento" {
		t.Errorf("expected info toast, got %+v", infos)
	}
}
