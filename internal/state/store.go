package state

import (
	"slices"
	"sync"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/calc"
)

// DashboardStats are the four headline numbers on the dashboard
type DashboardStats struct {
	TotalTeams   int
	TotalMatches int
	WinRate      float64
	ROI          float64
}

// Snapshot is one immutable view of the application state.
// Slices are never modified after a snapshot is published; updates replace them.
type Snapshot struct {
	Teams          []backend.Team
	Matches        []backend.Match
	CurrentSection Section
	Loading        bool

	Stats              DashboardStats
	Recommendations    *backend.DailyRecommendations
	RecommendationsErr bool
	MarketAnalysis     *backend.MarketAnalysis
	MarketAnalysisErr  bool
	Performance        *backend.PerformanceReport
	Opportunities      *backend.OpportunitySearch
	Analysis           *backend.MatchAnalysis
	Calculation        *calc.Result
}

// Token identifies one load started with Begin
type Token struct {
	loader string
	gen    uint64
}

// Loader returns the name the token was issued for
func (t Token) Loader() string {
	return t.loader
}

// Store holds the process-wide dashboard state
type Store struct {
	mu       sync.Mutex
	snap     Snapshot
	gens     map[string]uint64
	inflight int
}

// NewStore returns a store positioned on the dashboard section
func NewStore() *Store {
	return &Store{
		snap: Snapshot{CurrentSection: SectionDashboard},
		gens: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Update replaces the state with fn's result and returns it
func (s *Store) Update(fn func(Snapshot) Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(fn)
	return s.snap.clone()
}

// Begin starts a load for loader, superseding any earlier one still in flight
func (s *Store) Begin(loader string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[loader]++
	return Token{loader: loader, gen: s.gens[loader]}
}

// Commit applies fn only if t is the newest token for its loader.
// It reports false when the result was discarded as stale.
func (s *Store) Commit(t Token, fn func(Snapshot) Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[t.loader] != t.gen {
		return false
	}
	s.apply(fn)
	return true
}

// StartLoading marks one more load sequence as in flight
func (s *Store) StartLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.snap.Loading = true
}

// StopLoading ends one load sequence; Loading clears when none remain
func (s *Store) StopLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.snap.Loading = s.inflight > 0
}

// apply runs fn while keeping Loading owned by the store
func (s *Store) apply(fn func(Snapshot) Snapshot) {
	loading := s.snap.Loading
	next := fn(s.snap.clone())
	next.Loading = loading
	if _, ok := headings[next.CurrentSection]; !ok {
		next.CurrentSection = s.snap.CurrentSection
	}
	s.snap = next
}

func (snap Snapshot) clone() Snapshot {
	snap.Teams = slices.Clone(snap.Teams)
	snap.Matches = slices.Clone(snap.Matches)
	return snap
}
