package field

import (
	"fmt"
	"math"
)

// Evidence is one resonating wave backing an insight.
type Evidence struct {
	WaveID       string
	Source       string
	Interference float64
	Rank         float64
}

// Insight is the result of querying the field: a summary line, a
// saturating confidence score, the top-ranked evidence and the collapse
// probability of the query against the superposed resonant state.
type Insight struct {
	Summary    string
	Confidence float64
	Evidence   []Evidence
	Resonances int
	Collapse   float64
}

// Query embeds text into a transient wave, scores it against the stored
// waves and distills the resonant subset into an insight. The query wave
// is never inserted and the field is left unchanged. An empty field or a
// query with no resonances yields a zero-confidence insight, not an
// error.
func (f *ResonanceField) Query(text string) (Insight, error) {
	q, err := f.buildWave(text)
	if err != nil {
		return Insight{}, err
	}

	resonances := f.findResonances(q)
	if len(resonances) == 0 {
		return Insight{Summary: "No patterns found yet."}, nil
	}

	resonant := make([]*Wave, len(resonances))
	for i, r := range resonances {
		resonant[i] = r.Wave
	}
	var collapse float64
	if s := Superpose(resonant); s != nil {
		collapse = Collapse(q, s)
	}

	limit := f.cfg.MaxEvidence
	if limit > len(resonances) {
		limit = len(resonances)
	}
	evidence := make([]Evidence, 0, limit)
	for _, r := range resonances[:limit] {
		evidence = append(evidence, Evidence{
			WaveID:       r.Wave.ID,
			Source:       r.Wave.Source,
			Interference: r.Interference,
			Rank:         r.Rank,
		})
	}

	return Insight{
		Summary:    fmt.Sprintf("Found %d resonating patterns in your experience.", len(resonances)),
		Confidence: math.Min(1, float64(len(resonances))*0.3),
		Evidence:   evidence,
		Resonances: len(resonances),
		Collapse:   collapse,
	}, nil
}
