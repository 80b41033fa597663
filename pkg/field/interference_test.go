package field

import (
	"math"
	"testing"
)

func testWave(id string, vec []float32, keywords []string, freq, phase float64) *Wave {
	w := &Wave{
		ID:         id,
		Vector:     vec,
		Keywords:   keywords,
		Frequency:  freq,
		Phase:      phase,
		Entangled:  map[string]struct{}{},
		basis:      newQuantumBasis(vec),
		keywordSet: keywordSetOf(keywords),
	}
	w.setAmplitude(initialAmplitude(len(keywords)))
	return w
}

func TestInterference_Symmetric(t *testing.T) {
	a := testWave("a", []float32{1, 0, 0.5, 0}, []string{"coffee", "sarah"}, 2.0, 0.1)
	b := testWave("b", []float32{0.8, 0.2, 0.4, 0.1}, []string{"coffee"}, 2.5, 0.4)

	ab := Interference(a, b)
	ba := Interference(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Fatalf("Interference not symmetric: %v vs %v", ab, ba)
	}
}

func TestInterference_IdenticalWaves(t *testing.T) {
	vec := []float32{1, 2, 3, 4}
	a := testWave("a", vec, []string{"coffee"}, 2.0, 0.0)
	b := testWave("b", vec, []string{"coffee"}, 2.0, 0.0)

	// cosine 1, phase term 1, freq match 1, one shared keyword.
	got := Interference(a, b)
	want := 1.0 + keywordBonusWeight
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Interference = %v, want %v", got, want)
	}
}

func TestInterference_KeywordBonus(t *testing.T) {
	vec := []float32{1, 0, 0, 0}
	without := Interference(
		testWave("a", vec, []string{"coffee"}, 1.0, 0),
		testWave("b", vec, []string{"guitar"}, 1.0, 0),
	)
	with := Interference(
		testWave("c", vec, []string{"coffee", "ritual"}, 1.0, 0),
		testWave("d", vec, []string{"coffee", "ritual"}, 1.0, 0),
	)
	if with-without < 2*keywordBonusWeight-1e-9 {
		t.Fatalf("two shared keywords should add %v, got diff %v", 2*keywordBonusWeight, with-without)
	}
}

func TestInterference_FrequencyMismatchDampens(t *testing.T) {
	vec := []float32{1, 0, 0, 0}
	near := Interference(
		testWave("a", vec, nil, 2.0, 0),
		testWave("b", vec, nil, 2.0, 0),
	)
	far := Interference(
		testWave("c", vec, nil, 2.0, 0),
		testWave("d", vec, nil, 5.0, 0),
	)
	if far >= near {
		t.Fatalf("frequency gap should dampen: near=%v far=%v", near, far)
	}
	if math.Abs(far-near/4) > 1e-9 {
		t.Fatalf("mismatch factor should be 1/(1+3): near=%v far=%v", near, far)
	}
}

func TestInterference_OppositePhase(t *testing.T) {
	vec := []float32{1, 1, 0, 0}
	got := Interference(
		testWave("a", vec, nil, 1.0, 0),
		testWave("b", vec, nil, 1.0, math.Pi),
	)
	if got >= 0 {
		t.Fatalf("opposite phases must interfere destructively, got %v", got)
	}
}

func TestInterference_ZeroVector(t *testing.T) {
	a := testWave("a", make([]float32, 4), nil, 1.0, 0)
	b := testWave("b", []float32{1, 0, 0, 0}, nil, 1.0, 0)
	if got := Interference(a, b); got != 0 {
		t.Fatalf("zero vector should contribute zero cosine, got %v", got)
	}
}

func TestFrequencyFor(t *testing.T) {
	m := DefaultFrequencyMap()

	if got := m.FrequencyFor(nil); got != 1.0 {
		t.Fatalf("empty keywords = %v, want 1.0", got)
	}
	if got := m.FrequencyFor([]string{"coffee"}); got != 2.0 {
		t.Fatalf("coffee = %v, want 2.0", got)
	}
	// Mean of coffee (2.0) and an unknown token (1.0).
	if got := m.FrequencyFor([]string{"coffee", "zzz"}); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("mixed = %v, want 1.5", got)
	}
}

func TestInitialAmplitude(t *testing.T) {
	if got := initialAmplitude(0); got != 0.5 {
		t.Fatalf("no keywords = %v, want 0.5", got)
	}
	if got := initialAmplitude(4); math.Abs(got-0.7) > 1e-12 {
		t.Fatalf("4 keywords = %v, want 0.7", got)
	}
	if got := initialAmplitude(50); got != 1.0 {
		t.Fatalf("many keywords = %v, want cap 1.0", got)
	}
}
