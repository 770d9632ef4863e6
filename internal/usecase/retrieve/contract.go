package retrieve

import (
	"context"

	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/knn"
	"github.com/kailas-cloud/grounder/internal/domain/passage"
)

// Corpus is one immutable loaded corpus snapshot. Safe for concurrent reads.
type Corpus interface {
	Size() int
	Record(i int) *passage.Record
	Vectors() *knn.Matrix
	Dim() int
}

// CorpusProvider resolves the current corpus snapshot.
// Fails with domain.ErrCorpusNotReady before the first successful load.
type CorpusProvider interface {
	Corpus() (Corpus, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
