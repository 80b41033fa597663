package embed

import "fmt"

// Engine turns text into a fixed-length embedding plus the keyword tokens
// extracted from the same text. Implementations must be deterministic for
// identical input within one process lifetime.
type Engine interface {
	ModelID() string
	Dimensions() int
	Embed(text string) ([]float32, error)
	Keywords(text string) []string
}

// FallbackEngine tries a primary engine and degrades to a fallback encoder
// when the primary cannot produce a vector. Both engines must agree on
// dimensionality.
type FallbackEngine struct {
	primary  Engine
	fallback Engine
}

func NewFallback(primary, fallback Engine) (*FallbackEngine, error) {
	if primary == nil || fallback == nil {
		return nil, fmt.Errorf("fallback engine requires both primary and fallback")
	}
	if primary.Dimensions() != fallback.Dimensions() {
		return nil, fmt.Errorf("dimension mismatch: primary %d, fallback %d",
			primary.Dimensions(), fallback.Dimensions())
	}
	return &FallbackEngine{primary: primary, fallback: fallback}, nil
}

func (e *FallbackEngine) ModelID() string { return e.primary.ModelID() + "+" + e.fallback.ModelID() }

func (e *FallbackEngine) Dimensions() int { return e.primary.Dimensions() }

func (e *FallbackEngine) Embed(text string) ([]float32, error) {
	vec, err := e.primary.Embed(text)
	if err == nil {
		return vec, nil
	}
	return e.fallback.Embed(text)
}

func (e *FallbackEngine) Keywords(text string) []string {
	kws := e.primary.Keywords(text)
	if len(kws) > 0 {
		return kws
	}
	return e.fallback.Keywords(text)
}
