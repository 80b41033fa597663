package embed

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEngine memoizes embeddings and keyword extraction with a bounded
// LRU. Cached slices are shared; callers must treat them as read-only.
type CachedEngine struct {
	inner    Engine
	vectors  *lru.Cache[string, []float32]
	keywords *lru.Cache[string, []string]
}

func NewCached(inner Engine, size int) (*CachedEngine, error) {
	if size <= 0 {
		size = 4096
	}
	vectors, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	keywords, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &CachedEngine{inner: inner, vectors: vectors, keywords: keywords}, nil
}

func (e *CachedEngine) ModelID() string { return e.inner.ModelID() }

func (e *CachedEngine) Dimensions() int { return e.inner.Dimensions() }

func (e *CachedEngine) Embed(text string) ([]float32, error) {
	if vec, ok := e.vectors.Get(text); ok {
		return vec, nil
	}
	vec, err := e.inner.Embed(text)
	if err != nil {
		return nil, err
	}
	e.vectors.Add(text, vec)
	return vec, nil
}

func (e *CachedEngine) Keywords(text string) []string {
	if kws, ok := e.keywords.Get(text); ok {
		return kws
	}
	kws := e.inner.Keywords(text)
	e.keywords.Add(text, kws)
	return kws
}
