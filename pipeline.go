package grounder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/config"
	"github.com/kailas-cloud/grounder/internal/db"
	dbRedis "github.com/kailas-cloud/grounder/internal/db/redis"
	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/citation"
	"github.com/kailas-cloud/grounder/internal/domain/search/filter"
	"github.com/kailas-cloud/grounder/internal/domain/search/request"
	"github.com/kailas-cloud/grounder/internal/domain/search/result"
	"github.com/kailas-cloud/grounder/internal/logger"
	"github.com/kailas-cloud/grounder/internal/metrics"
	budgetrepo "github.com/kailas-cloud/grounder/internal/repository/budget"
	corpusrepo "github.com/kailas-cloud/grounder/internal/repository/corpus"
	"github.com/kailas-cloud/grounder/internal/repository/embcache"
	"github.com/kailas-cloud/grounder/internal/transport/openai"
	"github.com/kailas-cloud/grounder/internal/usecase/cite"
	embeddinguc "github.com/kailas-cloud/grounder/internal/usecase/embedding"
	"github.com/kailas-cloud/grounder/internal/usecase/health"
	"github.com/kailas-cloud/grounder/internal/usecase/retrieve"
	"github.com/kailas-cloud/grounder/internal/usecase/revise"
)

// Sentinel errors, re-exported for errors.Is at the consumer boundary.
var (
	ErrCorpusNotReady    = domain.ErrCorpusNotReady
	ErrCorpusLoad        = domain.ErrCorpusLoad
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrBudgetExceeded    = domain.ErrBudgetExceeded
	ErrEmptyQuery        = domain.ErrEmptyQuery
)

const (
	defaultReadinessTimeout = 10 * time.Second
	budgetHydrateTimeout    = 5 * time.Second
	budgetKeyTTL            = 48 * time.Hour
)

// Pipeline is the retrieval and grounded-citation entry point. Construct once,
// load a corpus, share across goroutines.
type Pipeline struct {
	cfg      config.Config
	logger   *zap.Logger
	ownedLog bool // built here, so Close syncs it

	store  db.Store // nil when no cache backend is configured
	loader *corpusrepo.Loader
	svc    *retrieve.Service
	health *health.Service
	budget *embeddinguc.BudgetTracker
}

// New creates a Pipeline from functional options. Wiring order: config →
// logger → embedder decorator chain (instruction → cache → budget+metrics) →
// corpus loader → services. The corpus itself is loaded separately via Load.
func New(opts ...Option) (*Pipeline, error) {
	pc := &pipelineConfig{}
	for _, o := range opts {
		o(pc)
	}

	cfg, err := resolveConfig(pc)
	if err != nil {
		return nil, fmt.Errorf("grounder: %w", err)
	}

	log := pc.logger
	owned := false
	if log == nil {
		log, err = logger.NewLogger(cfg.App.Env, cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("grounder: %w", err)
		}
		owned = true
	}

	metrics.RegisterRetrievalMetrics()
	metrics.RegisterEmbeddingMetrics()

	var store db.Store
	if cfg.Cache.Enabled {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("grounder: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("grounder: cache store not ready: %w", err)
		}
		store = s
	}

	emb, hc, tracker := buildEmbedder(pc, cfg, store, log)

	loader := corpusrepo.NewLoader(log)

	p := &Pipeline{
		cfg:      cfg,
		logger:   log,
		ownedLog: owned,
		store:    store,
		loader:   loader,
		svc:      retrieve.New(corpusProvider{loader}, emb, log),
		budget:   tracker,
	}

	var pinger health.StorePinger
	if store != nil {
		pinger = store
	}
	p.health = health.New(loader, hc, pinger)

	return p, nil
}

// resolveConfig layers option overrides over the optional config file and
// validates the result.
func resolveConfig(pc *pipelineConfig) (config.Config, error) {
	var cfg config.Config
	if pc.configEnv != "" {
		loaded, err := config.Load(pc.configEnv)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if pc.corpusDir != "" {
		cfg.Corpus.Dir = pc.corpusDir
	}
	if pc.openaiBase != "" {
		cfg.Embedding.BaseURL = pc.openaiBase
	}
	if pc.openaiKey != "" {
		cfg.Embedding.APIKey = pc.openaiKey
	}
	if pc.model != "" {
		cfg.Embedding.Model = pc.model
	}
	if pc.dimensions > 0 {
		cfg.Embedding.Dimensions = pc.dimensions
	}
	if pc.timeout > 0 {
		cfg.Embedding.TimeoutSec = int(pc.timeout / time.Second)
	}
	if pc.budgetSet {
		cfg.Embedding.DailyTokenBudget = pc.dailyBudget
	}
	if pc.instruction != "" {
		cfg.Embedding.QueryInstruction = pc.instruction
	}
	if len(pc.redisAddrs) > 0 {
		cfg.Cache.Enabled = true
		cfg.Cache.Addrs = pc.redisAddrs
		cfg.Cache.Password = pc.redisPass
	}
	if pc.cacheTTL > 0 {
		cfg.Cache.TTLSec = int(pc.cacheTTL / time.Second)
	}
	if pc.defaultK > 0 {
		cfg.Retrieve.DefaultK = pc.defaultK
	}
	if pc.maxK > 0 {
		cfg.Retrieve.MaxK = pc.maxK
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildEmbedder assembles the decorator chain around the base provider:
// instruction prefix, KV cache, then budget enforcement with metrics on the
// outside. Returns the chain, the provider health check (nil for custom
// providers that have none), and the budget tracker (nil when unlimited).
func buildEmbedder(
	pc *pipelineConfig, cfg config.Config, store db.Store, log *zap.Logger,
) (domain.Embedder, health.EmbeddingChecker, *embeddinguc.BudgetTracker) {
	provider := "openai"

	var base domain.Embedder
	var hc health.EmbeddingChecker
	switch {
	case pc.embedder != nil:
		provider = "custom"
		base = &embedderAdapter{inner: pc.embedder}
		if c, ok := pc.embedder.(interface{ HealthCheck(context.Context) error }); ok {
			hc = c
		}
	case cfg.Embedding.APIKey != "" || cfg.Embedding.BaseURL != "":
		oe := openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Provider:   provider,
			Logger:     log,
		})
		base = oe
		hc = oe
	default:
		base = unconfiguredEmbedder{}
	}

	emb := base
	if cfg.Embedding.QueryInstruction != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.Embedding.QueryInstruction)
	}
	if store != nil {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		emb = embcache.New(emb, store, cfg.Embedding.Model, ttl, metrics.EmbeddingCacheTotal, log)
	}

	var tracker *embeddinguc.BudgetTracker
	var checker embeddinguc.BudgetChecker
	if cfg.Embedding.DailyTokenBudget > 0 {
		tracker = embeddinguc.NewBudgetTracker(provider, cfg.Embedding.DailyTokenBudget, log)
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), budgetHydrateTimeout)
			tracker.WithStore(ctx, budgetrepo.New(store, budgetKeyTTL))
			cancel()
		}
		checker = tracker
	}

	emb = embeddinguc.NewInstrumentedEmbedder(emb, provider, cfg.Embedding.Model, checker, log)
	return emb, hc, tracker
}

// Load reads the corpus from dir (or the configured corpus dir when omitted)
// and makes it available to Retrieve. Idempotent per directory; loading a
// different directory replaces the resident corpus wholesale.
func (p *Pipeline) Load(ctx context.Context, dir ...string) error {
	d := p.cfg.Corpus.Dir
	if len(dir) > 0 && dir[0] != "" {
		d = dir[0]
	}
	if d == "" {
		return fmt.Errorf("grounder: corpus dir not configured (use WithCorpusDir)")
	}
	if _, err := p.loader.Load(ctx, d); err != nil {
		return fmt.Errorf("grounder: %w", err)
	}
	return nil
}

// Ready reports whether a corpus is resident.
func (p *Pipeline) Ready() bool { return p.loader.Ready() }

// Retrieve embeds the query and returns up to TopK passages ranked by
// similarity, after metadata filtering and adjacent-document dedup. A filter
// that matches nothing yields an empty slice, never the unfiltered corpus.
func (p *Pipeline) Retrieve(ctx context.Context, query string, opts *RetrieveOptions) ([]Hit, error) {
	if opts == nil {
		opts = &RetrieveOptions{}
	}

	f, err := filter.New(opts.Topics, opts.Counties, opts.DateFrom, opts.DateTo)
	if err != nil {
		return nil, fmt.Errorf("grounder: %w", err)
	}

	k := opts.TopK
	if k <= 0 {
		k = p.cfg.Retrieve.DefaultK
	}
	if k > p.cfg.Retrieve.MaxK {
		k = p.cfg.Retrieve.MaxK
	}

	req, err := request.New(query, k, &f)
	if err != nil {
		return nil, fmt.Errorf("grounder: %w", err)
	}

	hits, err := p.svc.Retrieve(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("grounder: %w", err)
	}

	out := make([]Hit, len(hits))
	for i := range hits {
		out[i] = hitFromResult(&hits[i])
	}
	return out, nil
}

// Cite deduplicates hits by source document and assigns markers in first-use
// order. The map resolves a hit's DocumentID (or synthetic key) to its marker;
// the list is the ordered source apparatus for the final text.
func (p *Pipeline) Cite(hits []Hit) (map[string]int, []Source) {
	internal := make([]result.Hit, len(hits))
	for i, h := range hits {
		internal[i] = hitToRecord(h)
	}
	markers, sources := cite.BuildSources(internal)

	out := make([]Source, len(sources))
	for i, s := range sources {
		out[i] = sourceFromCitation(s)
	}
	return markers, out
}

// TextBlock is one paragraph of draft text attributed to a source marker.
// Marker 0 means the block cites nothing.
type TextBlock struct {
	Text   string
	Marker int
}

// InsertMarkers appends " [n]" to each block and joins them with blank lines,
// suppressing a marker that repeats the previous block's.
func (p *Pipeline) InsertMarkers(blocks []TextBlock) string {
	internal := make([]cite.Block, len(blocks))
	for i, b := range blocks {
		internal[i] = cite.Block{Text: b.Text, Marker: b.Marker}
	}
	return cite.InsertMarkers(internal)
}

// Normalize cleans generator output: Unicode spacing, broken numbers and
// currency, soft-wrapped paragraphs, mangled URLs.
func (p *Pipeline) Normalize(text string) string {
	return revise.Normalize(text)
}

// Reconcile aligns generated text with its grounding sources: strips any
// generator-authored source section, renumbers [n] markers in first-use
// order, and reorders the source list to match. With no sources at all,
// every marker is removed instead: a document cannot cite nothing.
func (p *Pipeline) Reconcile(text string, sources []Source) (string, []Source) {
	cs := make([]citation.Source, len(sources))
	for i, s := range sources {
		cs[i] = sourceToCitation(s)
	}
	clean, final := cite.Reconcile(text, cs)

	out := make([]Source, len(final))
	for i, s := range final {
		out[i] = sourceFromCitation(s)
	}
	return clean, out
}

// Ground is Normalize followed by Reconcile: the one call a consumer makes
// on raw generator output.
func (p *Pipeline) Ground(text string, sources []Source) (string, []Source) {
	return p.Reconcile(revise.Normalize(text), sources)
}

// Health probes the corpus, the embedding provider, and the cache store.
// Failures are reported per component, never returned as errors.
func (p *Pipeline) Health(ctx context.Context) HealthReport {
	return reportFromHealth(p.health.Check(ctx))
}

// RemainingDailyTokens returns the remaining embedding token budget for the
// current UTC day, or -1 when no budget is configured.
func (p *Pipeline) RemainingDailyTokens() int64 {
	if p.budget == nil {
		return -1
	}
	return p.budget.RemainingDaily()
}

// Close releases the cache store connection and flushes the owned logger.
func (p *Pipeline) Close() {
	if p.store != nil {
		p.store.Close()
	}
	if p.ownedLog {
		_ = p.logger.Sync()
	}
}

// corpusProvider adapts the concrete loader to the retrieval contract.
type corpusProvider struct {
	loader *corpusrepo.Loader
}

func (c corpusProvider) Corpus() (retrieve.Corpus, error) {
	h, err := c.loader.Handle()
	if err != nil {
		return nil, err
	}
	return h, nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// unconfiguredEmbedder fails on use: the pipeline can still ground citations
// and serve health checks without an embedding provider, but not retrieve.
type unconfiguredEmbedder struct{}

func (unconfiguredEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"grounder: embedding provider not configured (use WithOpenAI or WithEmbedder)")
}
