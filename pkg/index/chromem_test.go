package index

import "testing"

func TestCandidates_RanksNearestFirst(t *testing.T) {
	x, err := New("waves-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vectors := map[string][]float32{
		"w1": {1, 0, 0},
		"w2": {0, 1, 0},
		"w3": {0, 0, 1},
	}
	for id, vec := range vectors {
		if err := x.Add(id, "text "+id, vec); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	if x.Count() != 3 {
		t.Fatalf("Count = %d, want 3", x.Count())
	}

	ids, err := x.Candidates([]float32{0.9, 0.1, 0}, 2)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ids))
	}
	if ids[0] != "w1" {
		t.Fatalf("nearest candidate = %s, want w1", ids[0])
	}
}

func TestCandidates_LimitAboveSizeRetriesDown(t *testing.T) {
	x, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := x.Add("only", "single wave", []float32{0, 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ids, err := x.Candidates([]float32{0, 1}, 10)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(ids) != 1 || ids[0] != "only" {
		t.Fatalf("candidates = %v, want [only]", ids)
	}
}

func TestCandidates_EmptyIndex(t *testing.T) {
	x, err := New("empty")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ids, err := x.Candidates([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Candidates on empty index: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("candidates = %v, want none", ids)
	}
}
