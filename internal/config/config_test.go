package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(llmAPIKeyEnv, "")
	t.Setenv(llmModelEnv, "")
	t.Setenv(listenAddrEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(telegramChatEnv, "")

	cfg := Load()

	if cfg.Server.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen address: %s", cfg.Server.ListenAddr)
	}
	if cfg.Newsletter.Name != "Front-end Brief" {
		t.Fatalf("unexpected newsletter name: %s", cfg.Newsletter.Name)
	}
	if cfg.Curation.BatchSize != 10 || cfg.Curation.FreshnessBonus != 10 {
		t.Fatalf("unexpected curation defaults: %+v", cfg.Curation)
	}
	if cfg.Scheduler.Interval != 7*24*time.Hour {
		t.Fatalf("unexpected scheduler interval: %s", cfg.Scheduler.Interval)
	}
	if len(cfg.Sources) == 0 {
		t.Fatalf("defaults must include at least one source")
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
newsletter:
  name: Backend Digest
  audience: backend engineers
curation:
  freshnessBonus: 5
  batchSize: 4
llm:
  model: file-model
sources:
  - name: Go Blog
    url: https://go.dev/blog
    feed: https://go.dev/blog/feed.atom
    categories: [Tooling]
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(llmModelEnv, "env-model")
	t.Setenv(listenAddrEnv, ":9999")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(llmAPIKeyEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(telegramChatEnv, "")

	cfg := Load()

	if cfg.Newsletter.Name != "Backend Digest" || cfg.Newsletter.Audience != "backend engineers" {
		t.Fatalf("file values not applied: %+v", cfg.Newsletter)
	}
	if cfg.Curation.FreshnessBonus != 5 || cfg.Curation.BatchSize != 4 {
		t.Fatalf("curation overrides not applied: %+v", cfg.Curation)
	}
	if cfg.LLM.Model != "env-model" {
		t.Fatalf("env override must win over the file, got %s", cfg.LLM.Model)
	}
	if cfg.Server.ListenAddr != ":9999" {
		t.Fatalf("listen address override not applied: %s", cfg.Server.ListenAddr)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Go Blog" {
		t.Fatalf("file sources should replace defaults: %+v", cfg.Sources)
	}
	if cfg.LLM.Endpoint == "" {
		t.Fatalf("unset file fields must keep their defaults")
	}
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(":::not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(llmAPIKeyEnv, "")
	t.Setenv(llmModelEnv, "")
	t.Setenv(listenAddrEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(telegramChatEnv, "")

	cfg := Load()
	if cfg.Newsletter.Name != "Front-end Brief" {
		t.Fatalf("broken file should fall back to defaults, got %s", cfg.Newsletter.Name)
	}
}
