package retrieve

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/knn"
	"github.com/kailas-cloud/grounder/internal/domain/search/filter"
	"github.com/kailas-cloud/grounder/internal/domain/search/request"
	"github.com/kailas-cloud/grounder/internal/domain/search/result"
	"github.com/kailas-cloud/grounder/internal/metrics"
)

// Service handles one retrieval: embed the query, narrow candidates through
// the metadata filter, rank by cosine similarity, dedup adjacent passages of
// the same document.
type Service struct {
	corpus CorpusProvider
	embed  Embedder
	logger *zap.Logger
}

// New creates a retrieval service.
func New(corpus CorpusProvider, embed Embedder, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, embed: embed, logger: logger}
}

// Retrieve returns up to req.K() passages ranked by descending similarity.
// A filter that matches nothing yields an empty result, never the unfiltered
// corpus. An empty result is not an error.
func (s *Service) Retrieve(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	start := time.Now()

	cor, err := s.corpus.Corpus()
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve corpus: %w", err)
	}
	if cor.Size() == 0 {
		// A zero-size corpus is a valid empty result, not a failure. No point
		// embedding the query against nothing.
		metrics.RetrievalsTotal.WithLabelValues("empty").Inc()
		s.logger.Debug("Retrieval over empty corpus", zap.Int("k", req.K()))
		return nil, nil
	}

	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	query := embResult.Embedding
	if len(query) != cor.Dim() {
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		return nil, domain.NewDimensionMismatch(cor.Dim(), len(query))
	}
	// Decorators (cache, instruction prefix) may hand back a vector that was
	// not re-normalized; cosine scoring assumes unit length.
	knn.Normalize(query)

	hits, candidates, path := s.rank(cor, req, query)

	took := time.Since(start)
	metrics.RetrievalCandidates.Observe(float64(candidates))
	metrics.RetrievalDuration.WithLabelValues(path).Observe(took.Seconds())
	if len(hits) == 0 {
		metrics.RetrievalsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RetrievalsTotal.WithLabelValues("ok").Inc()
	}

	s.logger.Debug("Retrieval completed",
		zap.Int("k", req.K()),
		zap.Bool("filtered", req.HasFilter()),
		zap.Int("candidates", candidates),
		zap.Int("hits", len(hits)),
		zap.Int("total_tokens", embResult.TotalTokens),
		zap.Duration("took", took),
	)

	return hits, nil
}

// rank scores the candidate set and applies the dedup policy. The full-corpus
// path avoids materializing the index list.
func (s *Service) rank(
	cor Corpus, req *request.Request, query []float32,
) (hits []result.Hit, candidates int, path string) {
	if req.HasFilter() {
		idx := filterCandidates(cor, req.Filter())
		if len(idx) == 0 {
			// Strict: a filter that matches nothing never falls back to the
			// unfiltered corpus.
			return nil, 0, "filtered"
		}
		scored := knn.TopK(cor.Vectors(), query, idx, req.K())
		return dedupAdjacent(cor, scored, req.K()), len(idx), "filtered"
	}

	scored := knn.TopKAll(cor.Vectors(), query, req.K())
	return dedupAdjacent(cor, scored, req.K()), cor.Size(), "full"
}

// filterCandidates collects the corpus indices whose records pass the filter.
func filterCandidates(cor Corpus, f *filter.Filter) []int {
	var idx []int
	for i := 0; i < cor.Size(); i++ {
		if f.Matches(cor.Record(i)) {
			idx = append(idx, i)
		}
	}
	return idx
}

// dedupAdjacent converts scored indices to hits, dropping a hit whose document
// equals the previous surviving hit's document. Non-adjacent repeats survive,
// and passages without a document ID are never deduped against each other.
func dedupAdjacent(cor Corpus, scored []knn.Scored, k int) []result.Hit {
	if len(scored) == 0 {
		return nil
	}

	hits := make([]result.Hit, 0, len(scored))
	prevDoc := ""
	for _, sc := range scored {
		rec := cor.Record(sc.Index)
		doc := rec.DocumentID()
		if doc != "" && doc == prevDoc {
			continue
		}
		hits = append(hits, result.New(sc.Index, sc.Score, *rec))
		prevDoc = doc
	}

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
