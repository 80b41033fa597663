package field

import (
	"math"
	"math/cmplx"

	"github.com/dotsetgreg/semweave/pkg/embed"
)

// Wave is one embedded experience held in the field arena. Identity fields
// (ID, Vector, Keywords, Frequency, Phase, CreatedStep) are fixed at
// creation; Amplitude and the entanglement set are mutated in place by the
// owning ResonanceField. Cross-references between waves are by ID only.
type Wave struct {
	ID          string
	Source      string
	Vector      []float32
	Keywords    []string
	Amplitude   float64
	Frequency   float64
	Phase       float64
	CreatedStep int
	Entangled   map[string]struct{}

	basis       []complex128 // unit-norm complex carrier, fixed at creation
	state       []complex128 // amplitude/phase/decoherence scaled basis
	decoherence float64
	keywordSet  map[string]struct{}
}

const quantumStateLen = 64

func newQuantumBasis(vector []float32) []complex128 {
	dims := len(vector)
	if dims == 0 {
		return nil
	}
	n := quantumStateLen
	if dims < n {
		n = dims
	}
	shift := dims / 4
	basis := make([]complex128, n)
	var norm float64
	for i := 0; i < n; i++ {
		re := float64(vector[i])
		im := 0.5 * float64(vector[(i+shift)%dims])
		basis[i] = complex(re, im)
		norm += re*re + im*im
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return basis
	}
	inv := complex(1/norm, 0)
	for i := range basis {
		basis[i] *= inv
	}
	return basis
}

// refreshState recomputes the derived quantum state. Called whenever
// amplitude or decoherence changes.
func (w *Wave) refreshState() {
	if w.state == nil {
		w.state = make([]complex128, len(w.basis))
	}
	scale := complex(w.Amplitude*(1-w.decoherence), 0) * cmplx.Exp(complex(0, w.Phase))
	for i, b := range w.basis {
		w.state[i] = scale * b
	}
}

// setAmplitude clamps amp to [0,1] and refreshes the quantum state.
func (w *Wave) setAmplitude(amp float64) {
	if amp < 0 {
		amp = 0
	}
	if amp > 1 {
		amp = 1
	}
	w.Amplitude = amp
	w.refreshState()
}

func (w *Wave) setDecoherence(d float64) {
	if d < 0 {
		d = 0
	}
	if d > maxDecoherence {
		d = maxDecoherence
	}
	w.decoherence = d
	w.refreshState()
}

const maxDecoherence = 0.5

// QuantumState returns the wave's current complex state. The slice is
// owned by the wave; callers must not mutate it.
func (w *Wave) QuantumState() []complex128 { return w.state }

// Decoherence reports the internal noise term reduced by consolidation.
func (w *Wave) Decoherence() float64 { return w.decoherence }

func (w *Wave) hasKeyword(k string) bool {
	_, ok := w.keywordSet[k]
	return ok
}

// SharedKeywords counts keyword tokens present on both waves.
func (w *Wave) SharedKeywords(other *Wave) int {
	a, b := w, other
	if len(b.keywordSet) < len(a.keywordSet) {
		a, b = b, a
	}
	n := 0
	for k := range a.keywordSet {
		if b.hasKeyword(k) {
			n++
		}
	}
	return n
}

// sharedKeywordSet returns the sorted intersection of keyword tokens.
func (w *Wave) sharedKeywordSet(other *Wave) []string {
	out := make([]string, 0, 4)
	for _, k := range w.Keywords {
		if other.hasKeyword(k) {
			out = append(out, k)
		}
	}
	return out
}

func (w *Wave) age(currentStep int) int {
	return currentStep - w.CreatedStep
}

// clone returns a detached deep copy for snapshots.
func (w *Wave) clone() *Wave {
	cp := &Wave{
		ID:          w.ID,
		Source:      w.Source,
		Vector:      append([]float32(nil), w.Vector...),
		Keywords:    append([]string(nil), w.Keywords...),
		Amplitude:   w.Amplitude,
		Frequency:   w.Frequency,
		Phase:       w.Phase,
		CreatedStep: w.CreatedStep,
		Entangled:   make(map[string]struct{}, len(w.Entangled)),
		basis:       append([]complex128(nil), w.basis...),
		state:       append([]complex128(nil), w.state...),
		decoherence: w.decoherence,
		keywordSet:  make(map[string]struct{}, len(w.keywordSet)),
	}
	for id := range w.Entangled {
		cp.Entangled[id] = struct{}{}
	}
	for k := range w.keywordSet {
		cp.keywordSet[k] = struct{}{}
	}
	return cp
}

// initialAmplitude derives the starting strength from keyword salience:
// richer keyword sets start stronger, capped at 1.
func initialAmplitude(keywordCount int) float64 {
	amp := 0.5 + 0.05*float64(keywordCount)
	if amp > 1 {
		amp = 1
	}
	return amp
}

func keywordSetOf(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}
	return set
}

// vectorNorm is a convenience wrapper kept close to the interference math.
func vectorNorm(vec []float32) float64 { return embed.Norm(vec) }
