package health

import (
	"context"
	"errors"
	"time"
)

// probeTimeout bounds one full Check run. A hung provider must not hang the
// caller's readiness endpoint with it.
const probeTimeout = 5 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Probe is one component check outcome.
type Probe struct {
	Status  CheckResult
	Latency time.Duration
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]Probe
}

var errCorpusNotLoaded = errors.New("corpus not loaded")

// Service coordinates health checks.
type Service struct {
	corpus    CorpusChecker
	embedding EmbeddingChecker
	store     StorePinger
}

// New creates a Service. embedding and store can be nil; their probes are
// skipped.
func New(corpus CorpusChecker, embedding EmbeddingChecker, store StorePinger) *Service {
	return &Service{corpus: corpus, embedding: embedding, store: store}
}

// Check runs health checks against all configured components. Failures are
// reported in the result, never returned as errors.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	checks := make(map[string]Probe)
	checks["corpus"] = runProbe(ctx, func(context.Context) error {
		if !s.corpus.Ready() {
			return errCorpusNotLoaded
		}
		return nil
	})
	if s.embedding != nil {
		checks["embedding"] = runProbe(ctx, s.embedding.HealthCheck)
	}
	if s.store != nil {
		checks["cache"] = runProbe(ctx, s.store.Ping)
	}

	return Report{Status: aggregate(checks), Checks: checks}
}

func runProbe(ctx context.Context, fn func(context.Context) error) Probe {
	start := time.Now()
	err := fn(ctx)
	p := Probe{Status: CheckOK, Latency: time.Since(start)}
	if err != nil {
		p.Status = CheckError
	}
	return p
}

func aggregate(checks map[string]Probe) Status {
	failed := 0
	for _, p := range checks {
		if p.Status == CheckError {
			failed++
		}
	}
	switch {
	case failed == 0:
		return Healthy
	case failed == len(checks):
		return Unhealthy
	default:
		return Degraded
	}
}
