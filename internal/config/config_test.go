package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchdsl/decode"
)

func validConfig() Config {
	return Config{
		HTTP:    HTTPConfig{Port: 8080},
		Cluster: ClusterConfig{Addrs: []string{"http://localhost:9200"}},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port must be between 1 and 65535, got 0"},
		{"no addrs", func(c *Config) { c.Cluster.Addrs = nil }, "cluster.addrs is required"},
		{"bad scheme", func(c *Config) { c.Cluster.Addrs = []string{"localhost:9200"} },
			`cluster.addrs[0] must be an http(s) URL, got "localhost:9200"`},
		{"retries", func(c *Config) { c.Cluster.MaxRetries = -1 }, "cluster.max_retries must not be negative, got -1"},
		{"depth", func(c *Config) { c.Decode.MaxDepth = decode.MaxDepth + 1 }, "decode.max_depth must not exceed 512, got 513"},
		{"cache", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs is required when cache.enabled is true"},
		{"embedding", func(c *Config) { c.Embedding.Model = "m" }, "embedding.base_url is required when embedding.model is set"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.MaxBodyBytes != 10<<20 {
		t.Errorf("expected MaxBodyBytes=10MiB, got %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Cluster.RequestTimeoutSec != 30 {
		t.Errorf("expected RequestTimeoutSec=30, got %d", cfg.Cluster.RequestTimeoutSec)
	}
	if cfg.Cluster.MaxRetries != 0 {
		t.Errorf("expected MaxRetries=0, got %d", cfg.Cluster.MaxRetries)
	}
	if cfg.Decode.MaxDepth != decode.MaxDepth {
		t.Errorf("expected MaxDepth=%d, got %d", decode.MaxDepth, cfg.Decode.MaxDepth)
	}
	if cfg.Cache.TTLSec != 60 {
		t.Errorf("expected TTLSec=60, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Cache.EmbeddingTTLSec != 86400 {
		t.Errorf("expected EmbeddingTTLSec=86400, got %d", cfg.Cache.EmbeddingTTLSec)
	}
	if cfg.Cache.KeyPrefix != "searchdsl:" {
		t.Errorf("expected KeyPrefix='searchdsl:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cluster: ClusterConfig{RequestTimeoutSec: 5, RetryBackoffMs: 50},
		Decode:  DecodeConfig{MaxDepth: 64},
		Cache:   CacheConfig{KeyPrefix: "custom:", TTLSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cluster.RetryBackoffMs != 50 {
		t.Errorf("expected RetryBackoffMs=50, got %d", cfg.Cluster.RetryBackoffMs)
	}
	if cfg.Decode.MaxDepth != 64 {
		t.Errorf("expected MaxDepth=64, got %d", cfg.Decode.MaxDepth)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SEARCHDSL_TEST_URL", "https://search.internal:9200")
	data := []byte(`
http:
  port: ${SEARCHDSL_TEST_PORT:-9090}
cluster:
  addrs: ["${SEARCHDSL_TEST_URL}"]
  typed_keys: true
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Cluster.Addrs[0] != "https://search.internal:9200" {
		t.Errorf("expected expanded addr, got %q", cfg.Cluster.Addrs[0])
	}
	if !cfg.Cluster.TypedKeys {
		t.Error("expected typed_keys")
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 8080\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected invalid config error, got %v", err)
	}
	_, err = Parse([]byte("http: [\n"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := "http:\n  port: 8081\ncluster:\n  addrs: [\"http://127.0.0.1:9200\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	t.Setenv("OPENSEARCH_URL", "")
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cluster.Addrs[0] != "http://localhost:9200" {
		t.Errorf("expected default cluster addr, got %q", cfg.Cluster.Addrs[0])
	}
	if cfg.Decode.MaxDepth != 256 {
		t.Errorf("expected max_depth 256, got %d", cfg.Decode.MaxDepth)
	}
}
