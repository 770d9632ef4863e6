package grounder

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	configEnv string // load config/<env>.yaml when set

	corpusDir string

	embedder    Embedder // custom provider; wins over the OpenAI settings
	openaiBase  string
	openaiKey   string
	model       string
	dimensions  int
	timeout     time.Duration
	instruction string
	dailyBudget int64
	budgetSet   bool
	redisAddrs  []string
	redisPass   string
	cacheTTL    time.Duration
	logger      *zap.Logger
	defaultK    int
	maxK        int
}

// WithConfigEnv loads config/<env>.yaml (with ${VAR} expansion and .env
// support) as the base configuration. Other options override it.
func WithConfigEnv(env string) Option {
	return func(c *pipelineConfig) {
		c.configEnv = env
	}
}

// WithCorpusDir sets the directory holding passages.jsonl and vectors.parquet.
func WithCorpusDir(dir string) Option {
	return func(c *pipelineConfig) {
		c.corpusDir = dir
	}
}

// WithOpenAI configures the OpenAI-compatible embedding provider. baseURL may
// be empty for api.openai.com; dimensions 0 keeps the provider default.
func WithOpenAI(baseURL, apiKey, model string, dimensions int) Option {
	return func(c *pipelineConfig) {
		c.openaiBase = baseURL
		c.openaiKey = apiKey
		c.model = model
		c.dimensions = dimensions
	}
}

// WithEmbedder plugs in a custom embedding provider instead of the built-in
// OpenAI transport. The provider must return unit vectors of the corpus
// dimension.
func WithEmbedder(e Embedder) Option {
	return func(c *pipelineConfig) {
		c.embedder = e
	}
}

// WithQueryInstruction prepends a prefix to every query before embedding.
// Asymmetric models (the e5 family) expect "query: " style prefixes that the
// corpus passages were not embedded with.
func WithQueryInstruction(prefix string) Option {
	return func(c *pipelineConfig) {
		c.instruction = prefix
	}
}

// WithEmbedTimeout bounds a single embedding provider call.
func WithEmbedTimeout(d time.Duration) Option {
	return func(c *pipelineConfig) {
		c.timeout = d
	}
}

// WithDailyTokenBudget caps embedding tokens per UTC day; over-budget
// retrievals fail with ErrBudgetExceeded. 0 means unlimited.
func WithDailyTokenBudget(tokens int64) Option {
	return func(c *pipelineConfig) {
		c.dailyBudget = tokens
		c.budgetSet = true
	}
}

// WithRedis enables the embedding cache and budget persistence on a
// Redis/Valkey instance.
func WithRedis(addr, password string) Option {
	return func(c *pipelineConfig) {
		c.redisAddrs = []string{addr}
		c.redisPass = password
	}
}

// WithCacheTTL overrides the embedding cache TTL (default 24h).
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *pipelineConfig) {
		c.cacheTTL = ttl
	}
}

// WithRetrieveLimits overrides the default and maximum K for retrievals.
func WithRetrieveLimits(defaultK, maxK int) Option {
	return func(c *pipelineConfig) {
		c.defaultK = defaultK
		c.maxK = maxK
	}
}

// WithLogger supplies a zap logger. Without it the pipeline builds one from
// the environment profile.
func WithLogger(l *zap.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = l
	}
}
