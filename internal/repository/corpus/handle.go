package corpus

import (
	domcorpus "github.com/kailas-cloud/grounder/internal/domain/corpus"
	"github.com/kailas-cloud/grounder/internal/domain/knn"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

// Handle is one fully loaded corpus. Immutable after construction; shared
// across concurrent retrievals without locking. Record embeddings alias the
// matrix rows, so vectors are stored once.
type Handle struct {
	dir      string
	records  []passage.Record
	matrix   *knn.Matrix
	manifest *domcorpus.Manifest // nil when the corpus dir has no manifest.json
}

// Dir returns the absolute corpus directory this handle was loaded from.
func (h *Handle) Dir() string { return h.dir }

// Size returns the number of passages.
func (h *Handle) Size() int { return len(h.records) }

// Record returns the passage at corpus index i.
func (h *Handle) Record(i int) *passage.Record { return &h.records[i] }

// Vectors returns the dense embedding matrix, row i belonging to Record(i).
func (h *Handle) Vectors() *knn.Matrix { return h.matrix }

// Dim returns the embedding dimensionality.
func (h *Handle) Dim() int { return h.matrix.Dim() }

// Manifest returns the corpus manifest and whether one was present.
func (h *Handle) Manifest() (domcorpus.Manifest, bool) {
	if h.manifest == nil {
		return domcorpus.Manifest{}, false
	}
	return *h.manifest, true
}
