package state_test

import (
	"sync"
	"testing"

	"github.com/fortuna/pitchside/internal/backend"
	"github.com/fortuna/pitchside/internal/state"
)

func TestNewStore_StartsOnDashboard(t *testing.T) {
	store := state.NewStore()
	snap := store.Snapshot()

	if snap.CurrentSection != state.SectionDashboard {
		t.Errorf("expected dashboard, got %s", snap.CurrentSection)
	}
	if snap.Loading {
		t.Error("expected loading to be false initially")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	store := state.NewStore()
	store.Update(func(s state.Snapshot) state.Snapshot {
		s.Teams = []backend.Team{{ID: 1, Name: "Benfica"}}
		return s
	})

	snap := store.Snapshot()
	snap.Teams[0].Name = "changed"

	if got := store.Snapshot().Teams[0].Name; got != "Benfica" {
		t.Errorf("expected stored team to be unchanged, got %s", got)
	}
}

func TestCommit_DiscardsStaleLoad(t *testing.T) {
	store := state.NewStore()

	first := store.Begin("teams")
	second := store.Begin("teams")

	if !store.Commit(second, func(s state.Snapshot) state.Snapshot {
		s.Teams = []backend.Team{{ID: 2}}
		return s
	}) {
		t.Fatal("expected newest token to commit")
	}

	if store.Commit(first, func(s state.Snapshot) state.Snapshot {
		s.Teams = []backend.Team{{ID: 1}}
		return s
	}) {
		t.Error("expected superseded token to be discarded")
	}

	if got := store.Snapshot().Teams[0].ID; got != 2 {
		t.Errorf("expected team 2 to survive, got %d", got)
	}
}

func TestCommit_LoadersAreIndependent(t *testing.T) {
	store := state.NewStore()

	teams := store.Begin("teams")
	store.Begin("matches")

	if !store.Commit(teams, func(s state.Snapshot) state.Snapshot { return s }) {
		t.Error("expected a matches load not to invalidate a teams load")
	}
}

func TestLoading_NestedSequences(t *testing.T) {
	store := state.NewStore()

	store.StartLoading()
	store.StartLoading()
	store.StopLoading()
	if !store.Snapshot().Loading {
		t.Error("expected loading while one sequence is still in flight")
	}

	store.StopLoading()
	if store.Snapshot().Loading {
		t.Error("expected loading cleared after all sequences finish")
	}

	store.StopLoading()
	if store.Snapshot().Loading {
		t.Error("expected extra StopLoading to be harmless")
	}
}

func TestUpdate_CannotTouchLoadingOrInvalidSection(t *testing.T) {
	store := state.NewStore()

	store.Update(func(s state.Snapshot) state.Snapshot {
		s.Loading = true
		s.CurrentSection = "settings"
		return s
	})

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("expected Update not to set Loading")
	}
	if snap.CurrentSection != state.SectionDashboard {
		t.Errorf("expected invalid section to be ignored, got %s", snap.CurrentSection)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := state.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.StartLoading()
			defer store.StopLoading()
			store.Update(func(s state.Snapshot) state.Snapshot {
				s.Stats.TotalTeams++
				return s
			})
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	if snap.Stats.TotalTeams != 50 {
		t.Errorf("expected 50 updates, got %d", snap.Stats.TotalTeams)
	}
	if snap.Loading {
		t.Error("expected loading false after all goroutines finish")
	}
}

func TestParseSection(t *testing.T) {
	for _, s := range state.Sections {
		got, ok := state.ParseSection(string(s))
		if !ok || got != s {
			t.Errorf("expected %s to parse", s)
		}
		if s.Title() == "" || s.Subtitle() == "" {
			t.Errorf("expected heading for %s", s)
		}
	}

	if _, ok := state.ParseSection("settings"); ok {
		t.Error("expected unknown section to be rejected")
	}
	if got := state.SectionOdds125.Title(); got != "Odds 1.25" {
		t.Errorf("expected title 'Odds 1.25', got %q", got)
	}
}
