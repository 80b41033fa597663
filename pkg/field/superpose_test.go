package field

import (
	"math"
	"math/cmplx"
	"testing"
)

func stateNorm(s []complex128) float64 {
	var sum float64
	for _, c := range s {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(sum)
}

func TestSuperpose_Empty(t *testing.T) {
	if got := Superpose(nil); got != nil {
		t.Fatalf("empty superposition = %v, want nil", got)
	}
}

func TestSuperpose_UnitNorm(t *testing.T) {
	a := testWave("a", []float32{1, 0, 0.3, 0.2}, []string{"coffee"}, 2, 0.1)
	b := testWave("b", []float32{0.2, 0.9, 0, 0.4}, []string{"guitar"}, 3, 0.5)

	s := Superpose([]*Wave{a, b})
	if math.Abs(stateNorm(s)-1) > 1e-9 {
		t.Fatalf("superposition norm = %v, want 1", stateNorm(s))
	}
}

func TestCollapse_SelfProjection(t *testing.T) {
	a := testWave("a", []float32{1, 0.5, 0.3, 0.2}, []string{"coffee"}, 2, 0.1)

	s := Superpose([]*Wave{a})
	p := Collapse(a, s)
	if math.Abs(p-1) > 1e-9 {
		t.Fatalf("collapse onto own superposition = %v, want 1", p)
	}
}

func TestCollapse_Bounds(t *testing.T) {
	a := testWave("a", []float32{1, 0, 0, 0}, nil, 1, 0)
	b := testWave("b", []float32{0.1, 0.9, 0.4, 0.2}, nil, 2, 1.3)
	c := testWave("c", []float32{0.5, 0.1, 0.8, 0}, nil, 3, 2.1)

	s := Superpose([]*Wave{b, c})
	p := Collapse(a, s)
	if p < 0 || p > 1 {
		t.Fatalf("collapse probability %v out of [0,1]", p)
	}
}

func TestCollapse_Deterministic(t *testing.T) {
	a := testWave("a", []float32{1, 0.2, 0, 0.7}, nil, 1, 0.3)
	b := testWave("b", []float32{0.4, 0.9, 0.1, 0}, nil, 2, 0.8)

	s := Superpose([]*Wave{a, b})
	p1 := Collapse(a, s)
	p2 := Collapse(a, s)
	if p1 != p2 {
		t.Fatalf("collapse not deterministic: %v vs %v", p1, p2)
	}
}

func TestCollapse_DoesNotMutate(t *testing.T) {
	a := testWave("a", []float32{1, 0.2, 0, 0.7}, nil, 1, 0.3)
	b := testWave("b", []float32{0.4, 0.9, 0.1, 0}, nil, 2, 0.8)

	before := append([]complex128(nil), a.state...)
	s := Superpose([]*Wave{a, b})
	_ = Collapse(a, s)

	for i := range before {
		if cmplx.Abs(before[i]-a.state[i]) > 1e-15 {
			t.Fatalf("collapse mutated wave state at %d", i)
		}
	}
}
