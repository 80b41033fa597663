package field

import (
	"math"
	"math/cmplx"
)

// Superpose combines a subset of waves into one composite complex state:
// the amplitude-weighted sum of their quantum states, normalized to unit
// magnitude. An empty subset yields nil.
func Superpose(waves []*Wave) []complex128 {
	if len(waves) == 0 {
		return nil
	}
	combined := make([]complex128, len(waves[0].state))
	for _, w := range waves {
		amp := complex(w.Amplitude, 0)
		for i, s := range w.state {
			if i >= len(combined) {
				break
			}
			combined[i] += amp * s
		}
	}
	normalizeComplex(combined)
	return combined
}

// Collapse projects a query wave onto a superposition and returns the
// match probability |<Q,S>|^2, clamped to [0,1]. The projection is
// deterministic and mutates nothing.
func Collapse(query *Wave, superposition []complex128) float64 {
	if query == nil || len(superposition) == 0 {
		return 0
	}
	q := append([]complex128(nil), query.state...)
	normalizeComplex(q)
	n := len(q)
	if len(superposition) < n {
		n = len(superposition)
	}
	var inner complex128
	for i := 0; i < n; i++ {
		inner += cmplx.Conj(q[i]) * superposition[i]
	}
	p := real(inner)*real(inner) + imag(inner)*imag(inner)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

func normalizeComplex(v []complex128) {
	var norm float64
	for _, c := range v {
		norm += real(c)*real(c) + imag(c)*imag(c)
	}
	if norm == 0 {
		return
	}
	inv := complex(1/math.Sqrt(norm), 0)
	for i := range v {
		v[i] *= inv
	}
}
