package field

import (
	"sort"
	"testing"
)

func TestEntanglementGraph_LinkSymmetric(t *testing.T) {
	g := NewEntanglementGraph()
	a := testWave("a", []float32{1, 0}, nil, 1, 0)
	b := testWave("b", []float32{0, 1}, nil, 1, 0)

	g.Link(a, b)

	if !g.IsEntangled("a", "b") || !g.IsEntangled("b", "a") {
		t.Fatal("entanglement must be symmetric")
	}
	if _, ok := a.Entangled["b"]; !ok {
		t.Fatal("edge not mirrored onto wave a")
	}
	if _, ok := b.Entangled["a"]; !ok {
		t.Fatal("edge not mirrored onto wave b")
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestEntanglementGraph_DuplicateAndSelfLinks(t *testing.T) {
	g := NewEntanglementGraph()
	a := testWave("a", []float32{1, 0}, nil, 1, 0)
	b := testWave("b", []float32{0, 1}, nil, 1, 0)

	g.Link(a, b)
	g.Link(a, b)
	g.Link(b, a)
	g.Link(a, a)

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1 after duplicate and self links", g.EdgeCount())
	}
	if g.Degree("a") != 1 {
		t.Fatalf("Degree(a) = %d, want 1", g.Degree("a"))
	}
}

func TestEntanglementGraph_Neighborhood(t *testing.T) {
	g := NewEntanglementGraph()
	ws := map[string]*Wave{}
	for _, id := range []string{"a", "b", "c", "d"} {
		ws[id] = testWave(id, []float32{1, 0}, nil, 1, 0)
	}
	// Chain a-b-c-d.
	g.Link(ws["a"], ws["b"])
	g.Link(ws["b"], ws["c"])
	g.Link(ws["c"], ws["d"])

	got := g.Neighborhood("a", 2)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("Neighborhood(a,2) = %v, want [b c]", got)
	}

	all := g.Neighborhood("a", 10)
	if len(all) != 3 {
		t.Fatalf("Neighborhood(a,10) = %v, want 3 reachable waves", all)
	}
}

func TestEntanglementGraph_RemoveWave(t *testing.T) {
	g := NewEntanglementGraph()
	ws := map[string]*Wave{}
	for _, id := range []string{"a", "b", "c"} {
		ws[id] = testWave(id, []float32{1, 0}, nil, 1, 0)
	}
	g.Link(ws["a"], ws["b"])
	g.Link(ws["a"], ws["c"])

	g.RemoveWave("a", func(id string) *Wave { return ws[id] })

	if g.EdgeCount() != 0 {
		t.Fatalf("EdgeCount = %d, want 0", g.EdgeCount())
	}
	if g.IsEntangled("b", "a") || g.IsEntangled("a", "b") {
		t.Fatal("edges must vanish with the removed wave")
	}
	if _, ok := ws["b"].Entangled["a"]; ok {
		t.Fatal("removal not mirrored onto surviving partner")
	}
}
