package field

import (
	"math"
	"math/cmplx"
)

// HologramConfig tunes the frequency-domain store. Redundancy controls
// how far information is spread across the spectrum and therefore how
// much coefficient damage reconstruction survives.
type HologramConfig struct {
	Redundancy int
}

func (c *HologramConfig) normalize() {
	if c.Redundancy <= 0 {
		c.Redundancy = 8
	}
	c.Redundancy = nextPow2(c.Redundancy)
}

// Hologram is a frequency-domain encoding of a wave-set snapshot. Each
// wave's amplitude-weighted vector is Fourier-transformed and every
// spectral coefficient is spread across redundant chirp-rotated slots,
// so zeroing up to half the coefficients still leaves each vector
// reconstructable within a bounded error. The encoder works on a
// snapshot and never touches live field state.
type Hologram struct {
	dims       int
	frame      int
	redundancy int
	ids        []string
	amplitudes []float64
	spectra    [][]complex128
}

// EncodeHologram transforms every wave in the snapshot.
func EncodeHologram(snap Snapshot, cfg HologramConfig) *Hologram {
	cfg.normalize()
	dims := 0
	if len(snap.Waves) > 0 {
		dims = len(snap.Waves[0].Vector)
	}
	frame := nextPow2(dims)
	h := &Hologram{
		dims:       dims,
		frame:      frame,
		redundancy: cfg.Redundancy,
		ids:        make([]string, 0, len(snap.Waves)),
		amplitudes: make([]float64, 0, len(snap.Waves)),
		spectra:    make([][]complex128, 0, len(snap.Waves)),
	}
	for _, w := range snap.Waves {
		h.ids = append(h.ids, w.ID)
		h.amplitudes = append(h.amplitudes, w.Amplitude)
		h.spectra = append(h.spectra, h.encodeVector(w.Vector, w.Amplitude))
	}
	return h
}

func (h *Hologram) encodeVector(vec []float32, amplitude float64) []complex128 {
	signal := make([]complex128, h.frame)
	for j, v := range vec {
		signal[j] = complex(amplitude*float64(v), 0)
	}
	fft(signal, false)

	spectrum := make([]complex128, h.frame*h.redundancy)
	for k := 0; k < h.redundancy; k++ {
		c := chirp(k, h.redundancy)
		for j := 0; j < h.frame; j++ {
			spectrum[k*h.frame+j] = c * signal[j]
		}
	}
	return spectrum
}

// Size returns the number of encoded waves.
func (h *Hologram) Size() int { return len(h.ids) }

// Coefficients returns the spectrum length per encoded wave.
func (h *Hologram) Coefficients() int { return h.frame * h.redundancy }

// Damage returns a copy with every spectral coefficient marked in the
// mask zeroed. The mask indexes coefficients and applies to every encoded
// wave; a short mask leaves the tail undamaged.
func (h *Hologram) Damage(mask []bool) *Hologram {
	cp := &Hologram{
		dims:       h.dims,
		frame:      h.frame,
		redundancy: h.redundancy,
		ids:        append([]string(nil), h.ids...),
		amplitudes: append([]float64(nil), h.amplitudes...),
		spectra:    make([][]complex128, len(h.spectra)),
	}
	for i, spectrum := range h.spectra {
		row := append([]complex128(nil), spectrum...)
		for m, dead := range mask {
			if dead && m < len(row) {
				row[m] = 0
			}
		}
		cp.spectra[i] = row
	}
	return cp
}

// ReconstructedWave is a decoded vector with its source wave ID.
type ReconstructedWave struct {
	ID     string
	Vector []float32
}

// Decode averages the surviving redundant slots of every spectral
// coefficient, inverse-transforms the result, and strips the amplitude
// weighting. A zeroed slot is indistinguishable from a vanished one, so
// only nonzero slots vote; a coefficient whose slots all vanished decodes
// to zero.
func (h *Hologram) Decode() []ReconstructedWave {
	out := make([]ReconstructedWave, 0, len(h.spectra))
	for i, spectrum := range h.spectra {
		signal := make([]complex128, h.frame)
		for j := 0; j < h.frame; j++ {
			var sum complex128
			var alive int
			for k := 0; k < h.redundancy; k++ {
				c := spectrum[k*h.frame+j]
				if c == 0 {
					continue
				}
				sum += c * cmplx.Conj(chirp(k, h.redundancy))
				alive++
			}
			if alive > 0 {
				signal[j] = sum / complex(float64(alive), 0)
			}
		}
		fft(signal, true)

		vec := make([]float32, h.dims)
		for j := 0; j < h.dims; j++ {
			vec[j] = float32(real(signal[j]))
		}
		if amp := h.amplitudes[i]; amp > 0 {
			inv := float32(1 / amp)
			for j := range vec {
				vec[j] *= inv
			}
		}
		out = append(out, ReconstructedWave{ID: h.ids[i], Vector: vec})
	}
	return out
}

// Probe scores a query vector against the hologram without decoding:
// the amplitude-weighted sum of spectral correlation magnitudes.
func (h *Hologram) Probe(vec []float32) float64 {
	if len(h.spectra) == 0 || len(vec) == 0 {
		return 0
	}
	q := h.encodeVector(vec, 1)
	qn := spectrumNorm(q)
	if qn == 0 {
		return 0
	}
	var score float64
	for i, spectrum := range h.spectra {
		sn := spectrumNorm(spectrum)
		if sn == 0 {
			continue
		}
		var inner complex128
		for m := range spectrum {
			inner += cmplx.Conj(q[m]) * spectrum[m]
		}
		score += h.amplitudes[i] * cmplx.Abs(inner) / (qn * sn)
	}
	return score
}

// HalfDamageMask builds a deterministic pseudo-random mask zeroing the
// given fraction of n coefficients. Identical seeds produce identical
// masks, keeping damage experiments reproducible.
func HalfDamageMask(n int, fraction float64, seed uint64) []bool {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	mask := make([]bool, n)
	target := int(fraction * float64(n))
	state := seed
	damaged := 0
	for damaged < target {
		var z uint64
		state, z = splitmix64(state)
		idx := int(z % uint64(n))
		if !mask[idx] {
			mask[idx] = true
			damaged++
		}
	}
	return mask
}

// splitmix64 advances the state and returns a well-mixed output word.
func splitmix64(state uint64) (uint64, uint64) {
	state += 0x9E3779B97F4A7C15
	z := state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return state, z ^ (z >> 31)
}

// chirp is the quadratic-phase rotation applied to redundant slot k. Its
// discrete spectrum is flat, so the slots stay distinguishable without
// favoring any one of them.
func chirp(k, redundancy int) complex128 {
	return cmplx.Exp(complex(0, math.Pi*float64(k*k)/float64(redundancy)))
}

func spectrumNorm(v []complex128) float64 {
	var sum float64
	for _, c := range v {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(sum)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft is an in-place iterative radix-2 Cooley-Tukey transform. len(x)
// must be a power of two. inverse=true applies the inverse transform
// including the 1/n scale.
func fft(x []complex128, inverse bool) {
	n := len(x)
	if n <= 1 {
		return
	}
	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		angle := 2 * math.Pi / float64(length)
		if !inverse {
			angle = -angle
		}
		wl := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for i := 0; i < length/2; i++ {
				u := x[start+i]
				v := x[start+i+length/2] * w
				x[start+i] = u + v
				x[start+i+length/2] = u - v
				w *= wl
			}
		}
	}
	if inverse {
		scale := complex(1/float64(n), 0)
		for i := range x {
			x[i] *= scale
		}
	}
}
