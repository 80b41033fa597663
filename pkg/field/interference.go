package field

import (
	"math"

	"github.com/dotsetgreg/semweave/pkg/embed"
)

const keywordBonusWeight = 0.2

// Interference computes the signed pairwise interference strength of two
// waves:
//
//	cosine(a,b) * cos(phaseA-phaseB) * 1/(1+|freqA-freqB|) + 0.2*|keywords∩|
//
// A zero vector contributes cosine 0 instead of failing. The function is
// pure and symmetric in its arguments.
func Interference(a, b *Wave) float64 {
	cosine := embed.Cosine(a.Vector, b.Vector)
	phaseTerm := math.Cos(a.Phase - b.Phase)
	freqMatch := 1.0 / (1.0 + math.Abs(a.Frequency-b.Frequency))
	bonus := keywordBonusWeight * float64(a.SharedKeywords(b))
	return cosine*phaseTerm*freqMatch + bonus
}
