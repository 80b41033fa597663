package field

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/google/uuid"

	"github.com/dotsetgreg/semweave/pkg/embed"
)

// Config tunes the resonance field. Zero values are replaced with the
// behavioral defaults; the thresholds form the observable contract and
// should not be changed without parity review.
type Config struct {
	TensorFrame        int
	CouplingConstant   float64
	EntangleThreshold  float64
	AmplifyThreshold   float64
	DampThreshold      float64
	ResonanceThreshold float64
	VacuumEnergy       float64
	MaxEvidence        int
	PruneAmplitude     float64
	Frequencies        FrequencyMap
	Decay              DecayConfig
	Crystal            CrystalConfig
	LoopWindow         int
}

func (c *Config) normalize() {
	if c.TensorFrame <= 0 {
		c.TensorFrame = 32
	}
	if c.CouplingConstant == 0 {
		c.CouplingConstant = 0.1
	}
	if c.EntangleThreshold == 0 {
		c.EntangleThreshold = 0.5
	}
	if c.AmplifyThreshold == 0 {
		c.AmplifyThreshold = 0.1
	}
	if c.DampThreshold == 0 {
		c.DampThreshold = -0.2
	}
	if c.ResonanceThreshold == 0 {
		c.ResonanceThreshold = 0.05
	}
	if c.VacuumEnergy == 0 {
		c.VacuumEnergy = 0.01
	}
	if c.MaxEvidence <= 0 {
		c.MaxEvidence = 5
	}
	if c.PruneAmplitude == 0 {
		c.PruneAmplitude = 0.01
	}
	if c.Frequencies == nil {
		c.Frequencies = DefaultFrequencyMap()
	}
	if c.LoopWindow <= 0 {
		c.LoopWindow = 16
	}
	c.Decay.normalize()
	c.Crystal.normalize()
}

// CandidateIndex pre-selects likely resonance candidates by embedding
// similarity. It is a pure accelerator: selected candidates are always
// re-scored with the exact interference formula, so enabling an index
// never changes scores, only which waves get scored on large fields.
type CandidateIndex interface {
	Add(id, text string, vector []float32) error
	Candidates(vector []float32, limit int) ([]string, error)
}

// ResonanceField owns the ordered wave arena, the entanglement relation,
// the aggregate field tensor and the crystal history. All mutable state
// lives here; no globals. The field is single-writer: callers running
// mutating operations (AddExperience, Tick, Prune) concurrently must
// serialize externally — the type provides no internal locking.
type ResonanceField struct {
	cfg    Config
	engine embed.Engine
	dims   int

	step    int
	order   []string
	waves   map[string]*Wave
	graph   *EntanglementGraph
	tensor  [][]complex128
	version uint64

	crystallizer *Crystallizer
	dynamics     *Dynamics

	index          CandidateIndex
	candidateLimit int
}

// New constructs an empty field whose dimensionality is fixed by the
// embedding engine for the lifetime of the instance.
func New(cfg Config, engine embed.Engine) (*ResonanceField, error) {
	if engine == nil {
		return nil, fmt.Errorf("resonance field requires an embedding engine")
	}
	dims := engine.Dimensions()
	if dims <= 0 {
		return nil, fmt.Errorf("%w: engine reports %d dimensions", ErrDimensionMismatch, dims)
	}
	cfg.normalize()

	tensor := make([][]complex128, cfg.TensorFrame)
	for i := range tensor {
		tensor[i] = make([]complex128, cfg.TensorFrame)
	}

	return &ResonanceField{
		cfg:          cfg,
		engine:       engine,
		dims:         dims,
		waves:        map[string]*Wave{},
		graph:        NewEntanglementGraph(),
		tensor:       tensor,
		crystallizer: NewCrystallizer(cfg.Crystal),
		dynamics:     NewDynamics(cfg.Decay, cfg.LoopWindow),
	}, nil
}

// SetCandidateIndex installs an optional similarity index consulted for
// resonance candidate pre-selection. A nil index restores the full scan.
func (f *ResonanceField) SetCandidateIndex(idx CandidateIndex, candidateLimit int) {
	f.index = idx
	if candidateLimit <= 0 {
		candidateLimit = 64
	}
	f.candidateLimit = candidateLimit
}

// Config returns the normalized configuration in effect.
func (f *ResonanceField) Config() Config { return f.cfg }

// Dimensions returns the fixed vector dimensionality of this field.
func (f *ResonanceField) Dimensions() int { return f.dims }

// Step returns the current insertion step.
func (f *ResonanceField) Step() int { return f.step }

// WaveCount returns the number of live waves.
func (f *ResonanceField) WaveCount() int { return len(f.order) }

func (f *ResonanceField) lookup(id string) *Wave { return f.waves[id] }

// buildWave embeds and keyword-extracts text into a wave without touching
// field state, so a failed insert leaves nothing behind.
func (f *ResonanceField) buildWave(text string) (*Wave, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	vector, err := f.engine.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embed experience: %w", err)
	}
	if len(vector) != f.dims {
		return nil, fmt.Errorf("%w: got %d, field has %d", ErrDimensionMismatch, len(vector), f.dims)
	}
	keywords := f.engine.Keywords(text)

	w := &Wave{
		ID:          uuid.NewString(),
		Source:      text,
		Vector:      vector,
		Keywords:    keywords,
		Frequency:   f.cfg.Frequencies.FrequencyFor(keywords),
		Phase:       math.Mod(float64(f.step)*0.1, 2*math.Pi),
		CreatedStep: f.step,
		Entangled:   map[string]struct{}{},
		basis:       newQuantumBasis(vector),
		keywordSet:  keywordSetOf(keywords),
	}
	w.setAmplitude(initialAmplitude(len(keywords)))
	return w, nil
}

// AddExperience embeds text, inserts the resulting wave, applies pairwise
// interference against every existing wave, updates the field tensor and
// runs the crystallization and temporal passes. The insert is
// all-or-nothing: any error leaves the field untouched. Cost is O(n) in
// the current wave count.
func (f *ResonanceField) AddExperience(text string) (string, error) {
	w, err := f.buildWave(text)
	if err != nil {
		return "", err
	}

	f.order = append(f.order, w.ID)
	f.waves[w.ID] = w

	// Pairwise scan in insertion order, excluding the new wave itself.
	// Entanglement edges are only added here, never removed mid-scan.
	// Constructive interference always amplifies; entanglement is layered
	// on top of the boost, it does not replace it.
	for _, id := range f.order[:len(f.order)-1] {
		other := f.waves[id]
		strength := Interference(w, other)
		switch {
		case strength > f.cfg.AmplifyThreshold:
			boost := f.cfg.CouplingConstant * strength
			other.setAmplitude(other.Amplitude + boost)
			w.setAmplitude(w.Amplitude + 0.5*boost)
			if strength > f.cfg.EntangleThreshold {
				f.graph.Link(w, other)
			}
		case strength < f.cfg.DampThreshold:
			drain := f.cfg.CouplingConstant * math.Abs(strength)
			other.setAmplitude(other.Amplitude - drain)
			w.setAmplitude(w.Amplitude - 0.5*drain)
		}
	}

	f.accumulateTensor(w)
	f.step++
	f.version++

	f.crystallizer.Check(f)
	f.dynamics.Tick(f)

	if f.index != nil {
		// A failed index add only costs a future full scan.
		_ = f.index.Add(w.ID, w.Source, w.Vector)
	}
	return w.ID, nil
}

// accumulateTensor folds the wave's vector into the fixed tensor frame and
// adds the amplitude- and phase-scaled outer product.
func (f *ResonanceField) accumulateTensor(w *Wave) {
	frame := f.cfg.TensorFrame
	p := make([]float64, frame)
	for i, v := range w.Vector {
		p[i%frame] += float64(v)
	}
	var norm float64
	for _, v := range p {
		norm += v * v
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range p {
			p[i] *= inv
		}
	}

	factor := complex(w.Amplitude, 0) * cmplx.Exp(complex(0, w.Phase))
	for j := 0; j < frame; j++ {
		for k := 0; k < frame; k++ {
			f.tensor[j][k] += factor * complex(p[j]*p[k], 0)
		}
	}

	// Rescale to keep the accumulated tensor bounded.
	var max float64
	for j := 0; j < frame; j++ {
		for k := 0; k < frame; k++ {
			if m := cmplx.Abs(f.tensor[j][k]); m > max {
				max = m
			}
		}
	}
	if max > 10 {
		scale := complex(10/max, 0)
		for j := 0; j < frame; j++ {
			for k := 0; k < frame; k++ {
				f.tensor[j][k] *= scale
			}
		}
	}
}

// FieldEnergy returns the aggregate diagnostic energy: a kinetic term from
// wave amplitudes, a potential term from the field tensor magnitude, and a
// constant vacuum floor per wave. Pure read, no side effects.
func (f *ResonanceField) FieldEnergy() float64 {
	var kinetic float64
	for _, id := range f.order {
		w := f.waves[id]
		kinetic += w.Amplitude * w.Amplitude * w.Frequency
	}
	var potential float64
	for _, row := range f.tensor {
		for _, c := range row {
			m := cmplx.Abs(c)
			potential += m * m
		}
	}
	return kinetic + potential + f.cfg.VacuumEnergy*float64(len(f.order))
}

// Resonance is one stored wave scored against a query wave.
type Resonance struct {
	Wave         *Wave
	Interference float64
	Rank         float64
}

// findResonances scores stored waves against q and returns those whose
// raw interference exceeds the resonance threshold, ranked descending by
// interference * amplitude * (1 + entanglement count). When a candidate
// index is installed and the field is large, only index candidates are
// scored; the formula itself is always the exact one.
func (f *ResonanceField) findResonances(q *Wave) []Resonance {
	ids := f.order
	if f.index != nil && len(f.order) > f.candidateLimit {
		if cand, err := f.index.Candidates(q.Vector, f.candidateLimit); err == nil && len(cand) > 0 {
			ids = cand
		}
	}

	out := make([]Resonance, 0, 8)
	for _, id := range ids {
		w, ok := f.waves[id]
		if !ok {
			continue
		}
		strength := Interference(q, w)
		if strength <= f.cfg.ResonanceThreshold {
			continue
		}
		rank := strength * w.Amplitude * (1 + float64(len(w.Entangled)))
		out = append(out, Resonance{Wave: w, Interference: strength, Rank: rank})
	}
	sortResonances(out)
	return out
}

func sortResonances(rs []Resonance) {
	// Insertion-order stable descending sort by rank; resonance lists are
	// short enough that simplicity wins.
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].Rank > rs[j-1].Rank; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// Prune evicts waves whose amplitude fell below minAmplitude, taking their
// entanglement edges with them. Crystals are historical snapshots and are
// not rewritten. Returns the evicted IDs.
func (f *ResonanceField) Prune(minAmplitude float64) []string {
	if minAmplitude <= 0 {
		minAmplitude = f.cfg.PruneAmplitude
	}
	evicted := make([]string, 0)
	kept := f.order[:0]
	for _, id := range f.order {
		w := f.waves[id]
		if w.Amplitude < minAmplitude {
			f.graph.RemoveWave(id, f.lookup)
			delete(f.waves, id)
			evicted = append(evicted, id)
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	if len(evicted) > 0 {
		f.version++
	}
	return evicted
}

// Tick advances field time by one step and applies the temporal pass
// (decay, decoherence, consolidation) without inserting anything.
func (f *ResonanceField) Tick() {
	f.step++
	f.dynamics.Tick(f)
}

// CausalLoops returns a lazy scanner over keyword-overlap cycles in the
// current wave set.
func (f *ResonanceField) CausalLoops() *LoopScanner { return f.dynamics.CausalLoops(f) }

// BraidPatterns mines recurring keyword chains across insertion order.
func (f *ResonanceField) BraidPatterns(minRepeats int) []BraidPattern {
	return f.dynamics.BraidPatterns(f, minRepeats)
}

// Entanglement exposes read-only queries over the linked-memory relation.
func (f *ResonanceField) Entanglement() *EntanglementGraph { return f.graph }

// Crystals returns the append-only crystal history.
func (f *ResonanceField) Crystals() []Crystal { return f.crystallizer.Crystals() }

// Stats is the aggregate summary exposed to consumers.
type Stats struct {
	WaveCount         int
	FieldEnergy       float64
	CrystalCount      int
	EntanglementCount int
	AvgAmplitude      float64
}

// GetStats summarizes the field. An empty field yields all zeros.
func (f *ResonanceField) GetStats() Stats {
	st := Stats{
		WaveCount:         len(f.order),
		FieldEnergy:       f.FieldEnergy(),
		CrystalCount:      f.crystallizer.Count(),
		EntanglementCount: f.graph.EdgeCount(),
	}
	if len(f.order) > 0 {
		var sum float64
		for _, id := range f.order {
			sum += f.waves[id].Amplitude
		}
		st.AvgAmplitude = sum / float64(len(f.order))
	}
	return st
}

// Snapshot is a detached copy of field state for read-only consumers:
// visualization, holographic encoding, archival.
type Snapshot struct {
	Step   int
	Tensor [][]complex128
	Waves  []*Wave
}

// GetSnapshot deep-copies the tensor and every wave in insertion order.
func (f *ResonanceField) GetSnapshot() Snapshot {
	tensor := make([][]complex128, len(f.tensor))
	for i, row := range f.tensor {
		tensor[i] = append([]complex128(nil), row...)
	}
	waves := make([]*Wave, 0, len(f.order))
	for _, id := range f.order {
		waves = append(waves, f.waves[id].clone())
	}
	return Snapshot{Step: f.step, Tensor: tensor, Waves: waves}
}

// Wave returns a detached copy of the identified wave.
func (f *ResonanceField) Wave(id string) (*Wave, bool) {
	w, ok := f.waves[id]
	if !ok {
		return nil, false
	}
	return w.clone(), true
}
