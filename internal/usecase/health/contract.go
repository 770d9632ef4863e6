package health

import "context"

// EmbeddingChecker probes the embedding provider.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorePinger probes the key-value store backing the embedding cache and
// budget counters.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// CorpusChecker reports whether the passage corpus finished loading. An empty
// corpus is still a loaded one, so readiness alone answers the probe.
type CorpusChecker interface {
	Ready() bool
}
