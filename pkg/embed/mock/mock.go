// Package mock provides a deterministic embedding engine for tests.
package mock

import (
	"hash/fnv"
	"math"

	"github.com/dotsetgreg/semweave/pkg/embed"
)

// Engine generates hash-seeded pseudo-random unit vectors, optionally
// overridden per text so tests can script exact similarities.
type Engine struct {
	dims      int
	scripted  map[string][]float32
	failTexts map[string]struct{}
}

func New(dims int) *Engine {
	if dims <= 0 {
		dims = 384
	}
	return &Engine{
		dims:      dims,
		scripted:  map[string][]float32{},
		failTexts: map[string]struct{}{},
	}
}

// Script fixes the vector returned for text. The vector is normalized and
// padded or truncated to the engine dimensionality.
func (e *Engine) Script(text string, vec []float32) {
	fixed := make([]float32, e.dims)
	copy(fixed, vec)
	embed.Normalize(fixed)
	e.scripted[text] = fixed
}

// FailOn makes Embed return an error for text, to exercise fallback paths.
func (e *Engine) FailOn(text string) {
	e.failTexts[text] = struct{}{}
}

func (e *Engine) ModelID() string { return "mock-hash" }

func (e *Engine) Dimensions() int { return e.dims }

func (e *Engine) Embed(text string) ([]float32, error) {
	if _, fail := e.failTexts[text]; fail {
		return nil, errUnavailable
	}
	if vec, ok := e.scripted[text]; ok {
		return vec, nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	embed.Normalize(vec)
	return vec, nil
}

func (e *Engine) Keywords(text string) []string {
	return embed.ExtractKeywords(text)
}

type unavailableError struct{}

func (unavailableError) Error() string { return "mock embedder unavailable" }

var errUnavailable = unavailableError{}
