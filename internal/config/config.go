package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the grounder pipeline configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env string `yaml:"env"` // local, dev, prod (default: from ENV, then "local")
}

// CorpusConfig holds corpus location settings.
type CorpusConfig struct {
	Dir string `yaml:"dir"` // directory with passages.jsonl + vectors.parquet
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	BaseURL          string `yaml:"base_url"` // OpenAI-compatible endpoint; empty = api.openai.com
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"` // 0 = provider default
	TimeoutSec       int    `yaml:"timeout_sec"`
	DailyTokenBudget int64  `yaml:"daily_token_budget"` // 0 = unlimited
	QueryInstruction string `yaml:"query_instruction"`  // optional prefix, e.g. "query: " for e5 models
}

// CacheConfig holds embedding cache settings (Redis/Valkey).
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// RetrieveConfig holds retrieval settings.
type RetrieveConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	loadDotEnv()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.App.Env == "" {
		c.App.Env = GetEnv()
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Retrieve.DefaultK <= 0 {
		c.Retrieve.DefaultK = 6
	}
	if c.Retrieve.MaxK <= 0 {
		c.Retrieve.MaxK = 50
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must be non-negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.DailyTokenBudget < 0 {
		return fmt.Errorf("embedding.daily_token_budget must be non-negative, got %d", c.Embedding.DailyTokenBudget)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Retrieve.MaxK < c.Retrieve.DefaultK {
		return fmt.Errorf(
			"retrieve.max_k must be >= retrieve.default_k, got max_k=%d default_k=%d",
			c.Retrieve.MaxK, c.Retrieve.DefaultK,
		)
	}
	return nil
}

// loadDotEnv loads a .env file if one exists, checking the working directory
// first and then walking up a few levels. Variables already set in the
// environment take precedence over .env values.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if fileExists(envPath) {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
