// Package corpus loads the on-disk corpus into memory and publishes it as an
// immutable handle.
package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/domain"
)

// Loader owns at most one resident corpus. Loads are serialized behind a
// mutex; the handle is published with an atomic swap, so concurrent readers
// always see either the previous complete corpus or the new one, never a
// partial state.
type Loader struct {
	mu     sync.Mutex
	cur    atomic.Pointer[Handle]
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the corpus at dir and publishes it. Idempotent per directory:
// loading the dir that is already resident returns the cached handle without
// touching the disk; a different dir replaces the corpus wholesale. When a
// replacement load fails, the previous handle stays resident.
func (l *Loader) Load(ctx context.Context, dir string) (*Handle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.NewCorpusLoadError(dir, fmt.Errorf("resolve dir: %w", err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cur := l.cur.Load(); cur != nil && cur.dir == abs {
		return cur, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewCorpusLoadError(abs, err)
	}

	start := time.Now()
	records, matrix, man, err := readCorpusDir(abs)
	if err != nil {
		l.logger.Error("Corpus load failed", zap.String("dir", abs), zap.Error(err))
		return nil, domain.NewCorpusLoadError(abs, err)
	}

	h := &Handle{dir: abs, records: records, matrix: matrix, manifest: man}
	l.cur.Store(h)

	l.logger.Info("Corpus loaded",
		zap.String("dir", abs),
		zap.Int("passages", h.Size()),
		zap.Int("dim", h.Dim()),
		zap.Duration("took", time.Since(start)),
	)
	return h, nil
}

// Handle returns the resident corpus, or domain.ErrCorpusNotReady when no
// load has succeeded yet.
func (l *Loader) Handle() (*Handle, error) {
	h := l.cur.Load()
	if h == nil {
		return nil, domain.ErrCorpusNotReady
	}
	return h, nil
}

// Ready reports whether a corpus is resident.
func (l *Loader) Ready() bool { return l.cur.Load() != nil }
