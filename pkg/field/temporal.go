package field

import (
	"math"
	"sort"
	"strings"
)

// DecayPolicy selects how amplitudes fade with age.
type DecayPolicy string

const (
	// DecayExponential multiplies by exp(-lambda*age).
	DecayExponential DecayPolicy = "exponential"
	// DecayPowerLaw multiplies by (1+age)^(-p); slower than exponential
	// for large ages, closer to human forgetting curves.
	DecayPowerLaw DecayPolicy = "power_law"
	// DecayAdaptive is exponential with the rate reduced for waves that
	// are entangled or keyword-rich, so important memories persist.
	DecayAdaptive DecayPolicy = "adaptive"
)

// DecayConfig tunes temporal decay and consolidation.
type DecayConfig struct {
	Policy           DecayPolicy
	Lambda           float64
	Exponent         float64
	KeywordThreshold int

	ConsolidateAge       int
	ConsolidateAmplitude float64
	ConsolidateBoost     float64
	DecoherenceRate      float64
}

func (c *DecayConfig) normalize() {
	if c.Policy == "" {
		c.Policy = DecayExponential
	}
	if c.Lambda == 0 {
		c.Lambda = 0.01
	}
	if c.Exponent == 0 {
		c.Exponent = 0.5
	}
	if c.KeywordThreshold <= 0 {
		c.KeywordThreshold = 5
	}
	if c.ConsolidateAge <= 0 {
		c.ConsolidateAge = 10
	}
	if c.ConsolidateAmplitude == 0 {
		c.ConsolidateAmplitude = 0.8
	}
	if c.ConsolidateBoost == 0 {
		c.ConsolidateBoost = 0.1
	}
	if c.DecoherenceRate == 0 {
		c.DecoherenceRate = 0.005
	}
}

// Dynamics applies decay and consolidation on every field tick and mines
// causal loops over the insertion order.
type Dynamics struct {
	cfg        DecayConfig
	loopWindow int

	seenLoops   map[string]struct{}
	loopVersion uint64
}

func NewDynamics(cfg DecayConfig, loopWindow int) *Dynamics {
	cfg.normalize()
	if loopWindow <= 0 {
		loopWindow = 16
	}
	return &Dynamics{cfg: cfg, loopWindow: loopWindow, seenLoops: map[string]struct{}{}}
}

// decayFactor returns the multiplicative amplitude factor for one wave at
// the given age under the configured policy.
func (d *Dynamics) decayFactor(w *Wave, age int) float64 {
	if age <= 0 {
		return 1
	}
	t := float64(age)
	switch d.cfg.Policy {
	case DecayPowerLaw:
		return math.Pow(1+t, -d.cfg.Exponent)
	case DecayAdaptive:
		importance := 0.5 * float64(len(w.Entangled))
		if extra := len(w.Keywords) - d.cfg.KeywordThreshold; extra > 0 {
			importance += 0.1 * float64(extra)
		}
		return math.Exp(-d.cfg.Lambda * t / (1 + importance))
	default:
		return math.Exp(-d.cfg.Lambda * t)
	}
}

// Tick runs one temporal pass over the field: decay every wave by its
// age, accumulate decoherence, then consolidate old strong memories by
// boosting amplitude and damping their noise term.
func (d *Dynamics) Tick(f *ResonanceField) {
	for _, id := range f.order {
		w := f.waves[id]
		age := w.age(f.step)
		if age <= 0 {
			continue
		}
		w.setAmplitude(w.Amplitude * d.decayFactor(w, age))
		w.setDecoherence(w.decoherence + d.cfg.DecoherenceRate)

		if age > d.cfg.ConsolidateAge && w.Amplitude > d.cfg.ConsolidateAmplitude {
			w.setAmplitude(w.Amplitude + d.cfg.ConsolidateBoost)
			w.setDecoherence(w.decoherence * 0.5)
		}
	}
}

// CausalLoop is a cyclic keyword-overlap chain across three waves in
// insertion order: A overlaps B, B overlaps C, and C overlaps back to A.
type CausalLoop struct {
	IDs      [3]string
	Keywords []string
}

func loopKey(a, b, c string) string {
	return a + "|" + b + "|" + c
}

// LoopScanner lazily yields causal loops detected over the current wave
// set. Each loop is reported once until the underlying wave set changes,
// at which point the scanner's parent dynamics forgets reported loops.
type LoopScanner struct {
	field *ResonanceField
	dyn   *Dynamics
	i, j  int
	k     int
}

// CausalLoops returns a scanner over the field's current state. The scan
// is bounded by the configured lookback window, keeping each full pass
// linear in the wave count for a fixed window.
func (d *Dynamics) CausalLoops(f *ResonanceField) *LoopScanner {
	if f.version != d.loopVersion {
		d.seenLoops = map[string]struct{}{}
		d.loopVersion = f.version
	}
	return &LoopScanner{field: f, dyn: d, i: 0, j: 1, k: 2}
}

// Next returns the next unreported loop, or false when the scan is done.
func (s *LoopScanner) Next() (CausalLoop, bool) {
	order := s.field.order
	n := len(order)
	for ; s.i < n; s.i++ {
		limit := s.i + s.dyn.loopWindow
		if limit > n-1 {
			limit = n - 1
		}
		if s.j <= s.i {
			s.j = s.i + 1
		}
		for ; s.j <= limit; s.j++ {
			if s.k <= s.j {
				s.k = s.j + 1
			}
			for ; s.k <= limit; s.k++ {
				a := s.field.waves[order[s.i]]
				b := s.field.waves[order[s.j]]
				c := s.field.waves[order[s.k]]
				if a.SharedKeywords(b) == 0 || b.SharedKeywords(c) == 0 || c.SharedKeywords(a) == 0 {
					continue
				}
				key := loopKey(a.ID, b.ID, c.ID)
				if _, seen := s.dyn.seenLoops[key]; seen {
					continue
				}
				s.dyn.seenLoops[key] = struct{}{}
				loop := CausalLoop{IDs: [3]string{a.ID, b.ID, c.ID}, Keywords: loopKeywords(a, b, c)}
				s.k++
				return loop, true
			}
			s.k = 0
		}
		s.j = 0
		s.k = 0
	}
	return CausalLoop{}, false
}

func loopKeywords(a, b, c *Wave) []string {
	set := map[string]struct{}{}
	for _, k := range a.sharedKeywordSet(b) {
		set[k] = struct{}{}
	}
	for _, k := range b.sharedKeywordSet(c) {
		set[k] = struct{}{}
	}
	for _, k := range c.sharedKeywordSet(a) {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BraidPattern is a repeated keyword signature linking consecutive waves.
type BraidPattern struct {
	Keywords []string
	Count    int
}

// BraidPatterns mines the insertion order for keyword signatures shared
// by consecutive waves that recur at least minRepeats times.
func (d *Dynamics) BraidPatterns(f *ResonanceField, minRepeats int) []BraidPattern {
	if minRepeats <= 0 {
		minRepeats = 2
	}
	counts := map[string]int{}
	for i := 0; i+1 < len(f.order); i++ {
		a := f.waves[f.order[i]]
		b := f.waves[f.order[i+1]]
		shared := a.sharedKeywordSet(b)
		if len(shared) == 0 {
			continue
		}
		counts[strings.Join(shared, "|")]++
	}
	out := make([]BraidPattern, 0, len(counts))
	for sig, count := range counts {
		if count < minRepeats {
			continue
		}
		out = append(out, BraidPattern{Keywords: strings.Split(sig, "|"), Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return len(out[i].Keywords) > len(out[j].Keywords)
		}
		return out[i].Count > out[j].Count
	})
	return out
}
