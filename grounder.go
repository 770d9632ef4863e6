// Package grounder retrieves relevant source passages for fundraising copy
// and keeps generated text honest about where its claims come from.
//
// The pipeline has two halves. Retrieval runs nearest-neighbor search over an
// in-memory passage corpus with optional metadata filtering (topics, counties,
// date window). Citation grounding deduplicates the retrieved documents into a
// numbered source list and rewrites generated text so every [n] marker points
// at a real retrieved source, renumbered in first-use order.
//
//	p, _ := grounder.New(
//	    grounder.WithOpenAI("", os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", 0),
//	    grounder.WithCorpusDir("./corpus"),
//	)
//	defer p.Close()
//
//	_ = p.Load(ctx)
//	hits, _ := p.Retrieve(ctx, "youth programs in Lane County", &grounder.RetrieveOptions{
//	    Counties: []string{"Lane"},
//	    TopK:     6,
//	})
//	markers, sources := p.Cite(hits)
//	// ... hand hits + markers to a generator, get a draft back ...
//	text, final := p.Ground(draft, sources)
//
// Text generation itself is out of scope: the pipeline consumes the
// generator's raw output and discards any source list the generator authored
// on its own.
package grounder

import (
	"context"

	"github.com/kailas-cloud/grounder/internal/version"
)

// Version returns the build version injected via ldflags ("dev" otherwise).
func Version() string { return version.Version }

// Embedder is the pluggable text vectorization contract for custom providers.
// Implementations must return unit-length vectors of a fixed dimension that
// matches the loaded corpus.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries a query vector plus provider-reported token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
