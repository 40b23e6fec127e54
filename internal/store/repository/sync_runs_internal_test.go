package repository

import "testing"

func TestChampionshipArray(t *testing.T) {
	got := championshipArray([]int{2, 6, 10})
	if len(got) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(got))
	}
	if got[0] != 2 || got[1] != 6 || got[2] != 10 {
		t.Errorf("expected [2 6 10], got %v", got)
	}

	value, err := got.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "{2,6,10}" {
		t.Errorf("expected {2,6,10}, got %v", value)
	}
}

func TestChampionshipArray_Empty(t *testing.T) {
	got := championshipArray(nil)
	if len(got) != 0 {
		t.Errorf("expected empty array, got %v", got)
	}
}
