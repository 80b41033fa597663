package embed

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const chargramModelID = "semweave-chargram-384-v1"

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_\-']+`)

// ChargramEngine is the deterministic character-trigram hashing encoder.
// It needs no external model and serves as the documented degraded
// fallback when a real embedding backend is unavailable.
type ChargramEngine struct {
	dims int
}

func NewChargram(dims int) *ChargramEngine {
	if dims <= 0 {
		dims = 384
	}
	return &ChargramEngine{dims: dims}
}

func (e *ChargramEngine) ModelID() string { return chargramModelID }

func (e *ChargramEngine) Dimensions() int { return e.dims }

func (e *ChargramEngine) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vec, nil
	}
	window := "#" + normalized + "#"
	for i := 0; i+3 <= len(window); i++ {
		gram := window[i : i+3]
		if strings.TrimSpace(gram) == "" {
			continue
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(gram))
		idx := int(h.Sum64() % uint64(e.dims))
		vec[idx]++
	}
	for _, token := range tokenize(normalized) {
		h := fnv.New64a()
		_, _ = h.Write([]byte("tok:" + token))
		idx := int(h.Sum64() % uint64(e.dims))
		vec[idx] += 1.25
	}
	Normalize(vec)
	return vec, nil
}

func (e *ChargramEngine) Keywords(text string) []string {
	return ExtractKeywords(text)
}

func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return nil
	}
	return matches
}

// Norm returns the Euclidean norm of vec.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Normalize scales vec to unit norm in place. Zero vectors are left as-is.
func Normalize(vec []float32) {
	n := Norm(vec)
	if n == 0 {
		return
	}
	inv := float32(1.0 / n)
	for i := range vec {
		vec[i] *= inv
	}
}

// Cosine returns the cosine similarity of a and b, treating either zero
// vector as orthogonal rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
