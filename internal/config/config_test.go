package config

import "testing"

func TestValidate_NegativeDimensions(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Dimensions: -1},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative dimensions")
	}
}

func TestValidate_NegativeBudget(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{DailyTokenBudget: -100},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative daily token budget")
	}
}

func TestValidate_CacheEnabledWithoutAddrs(t *testing.T) {
	cfg := Config{
		Cache: CacheConfig{Enabled: true},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled cache without addrs")
	}
}

func TestValidate_CacheDisabledWithoutAddrs(t *testing.T) {
	cfg := Config{
		Cache: CacheConfig{Enabled: false},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for disabled cache: %v", err)
	}
}

func TestValidate_MaxKBelowDefaultK(t *testing.T) {
	cfg := Config{
		Retrieve: RetrieveConfig{DefaultK: 20, MaxK: 10},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for max_k < default_k")
	}

	expected := "retrieve.max_k must be >= retrieve.default_k, got max_k=10 default_k=20"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.App.Env == "" {
		t.Error("expected App.Env to receive a default")
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected Model=text-embedding-3-small, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.Embedding.TimeoutSec)
	}
	if cfg.Cache.TTLSec != 86400 {
		t.Errorf("expected TTLSec=86400, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Retrieve.DefaultK != 6 {
		t.Errorf("expected DefaultK=6, got %d", cfg.Retrieve.DefaultK)
	}
	if cfg.Retrieve.MaxK != 50 {
		t.Errorf("expected MaxK=50, got %d", cfg.Retrieve.MaxK)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		App:       AppConfig{Env: "prod"},
		Embedding: EmbeddingConfig{Model: "intfloat/e5-mistral-7b-instruct", TimeoutSec: 60},
		Cache:     CacheConfig{TTLSec: 3600},
		Retrieve:  RetrieveConfig{DefaultK: 10, MaxK: 20},
	}
	cfg.ApplyDefaults()

	if cfg.App.Env != "prod" {
		t.Errorf("expected Env=prod, got %q", cfg.App.Env)
	}
	if cfg.Embedding.Model != "intfloat/e5-mistral-7b-instruct" {
		t.Errorf("expected model preserved, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.TimeoutSec != 60 {
		t.Errorf("expected TimeoutSec=60, got %d", cfg.Embedding.TimeoutSec)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec=3600, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Retrieve.DefaultK != 10 {
		t.Errorf("expected DefaultK=10, got %d", cfg.Retrieve.DefaultK)
	}
	if cfg.Retrieve.MaxK != 20 {
		t.Errorf("expected MaxK=20, got %d", cfg.Retrieve.MaxK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GROUNDER_TEST_KEY", "sk-abc123")

	got := string(expandEnvVars([]byte("api_key: ${GROUNDER_TEST_KEY}")))
	if got != "api_key: sk-abc123" {
		t.Errorf("expandEnvVars = %q", got)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	t.Setenv("GROUNDER_TEST_UNSET", "")

	got := string(expandEnvVars([]byte("model: ${GROUNDER_TEST_UNSET:-text-embedding-3-small}")))
	if got != "model: text-embedding-3-small" {
		t.Errorf("expandEnvVars = %q", got)
	}
}
