package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected provider=openai, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Index.Storage != "file" {
		t.Errorf("expected storage=file, got %s", cfg.Index.Storage)
	}
	if cfg.Search.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Search.TopK)
	}
	if cfg.Chat.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %f", cfg.Chat.Temperature)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "embedkit.yaml")

	content := `
embedding:
  provider: cohere
  model: embed-english-v3.0
  dimension: 1024
index:
  storage: bolt
search:
  top_k: 10
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Embedding.Provider != "cohere" {
		t.Errorf("expected provider=cohere, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 1024 {
		t.Errorf("expected dimension=1024, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Index.Storage != "bolt" {
		t.Errorf("expected storage=bolt, got %s", cfg.Index.Storage)
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Search.TopK)
	}
	// Untouched sections keep their defaults.
	if cfg.Chat.Model != "command-r-plus-08-2024" {
		t.Errorf("expected default chat model, got %s", cfg.Chat.Model)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "embedkit.yaml")

	content := `
index:
  dir: my-indexes
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.Dir != "my-indexes" {
		t.Errorf("expected dir=my-indexes, got %s", cfg.Index.Dir)
	}
}

func TestIndexDir(t *testing.T) {
	cfg := DefaultConfig()

	got := IndexDir("/home/user/project", cfg)
	want := filepath.Join("/home/user/project", "indexes")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.Index.Dir = "/var/lib/embedkit"
	if got := IndexDir("/home/user/project", cfg); got != "/var/lib/embedkit" {
		t.Errorf("absolute dir should pass through, got %s", got)
	}
}
