// Package result holds the ranked retrieval hit produced per query.
package result

import "github.com/kailas-cloud/grounder/internal/domain/passage"

// Hit is a single ranked retrieval hit. Transient: built per query, ordered
// by descending score with ties broken by ascending corpus index.
type Hit struct {
	index  int
	score  float32
	record passage.Record
}

// New creates a ranked hit.
func New(index int, score float32, record passage.Record) Hit {
	return Hit{index: index, score: score, record: record}
}

// Index returns the original corpus index of the passage.
func (h *Hit) Index() int { return h.index }

// Score returns the cosine similarity against the query.
func (h *Hit) Score() float32 { return h.score }

// Record returns the matched passage.
func (h *Hit) Record() *passage.Record { return &h.record }

// DocumentID is a convenience accessor for adjacency dedup and citation
// building.
func (h *Hit) DocumentID() string { return h.record.DocumentID() }
