// Package index provides an embedded vector index used by the resonance
// field as a candidate pre-filter for large fields. Scoring stays exact
// in the field itself; the index only narrows which waves get scored.
package index

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/dotsetgreg/semweave/pkg/logger"
)

// ChromemIndex wraps chromem-go, a pure Go embedded vector database.
// It satisfies field.CandidateIndex.
type ChromemIndex struct {
	col *chromem.Collection
}

// New creates an in-memory index with a single collection.
func New(name string) (*ChromemIndex, error) {
	if name == "" {
		name = "waves"
	}
	db := chromem.NewDB()
	// Embeddings are supplied by the caller, so no embedding func and the
	// default cosine distance.
	col, err := db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemIndex{col: col}, nil
}

// Add indexes one wave's vector under its ID.
func (x *ChromemIndex) Add(id, text string, vector []float32) error {
	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: vector,
	}
	if err := x.col.AddDocument(context.Background(), doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Candidates returns up to limit wave IDs nearest the query vector,
// best first. chromem rejects result counts above the collection size,
// so the limit is retried downward until the query fits.
func (x *ChromemIndex) Candidates(vector []float32, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []chromem.Result
	for n := limit; n >= 1; n-- {
		var err error
		results, err = x.col.QueryEmbedding(context.Background(), vector, n, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if n == 1 {
				logger.DebugCF("index", "collection empty, no candidates", nil)
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Count reports the number of indexed waves.
func (x *ChromemIndex) Count() int { return x.col.Count() }

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
