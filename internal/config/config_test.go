package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Embedder.Type != "hashing" || cfg.Embedder.Dimension != 384 {
		t.Errorf("embedder defaults = %+v", cfg.Embedder)
	}
	if cfg.Chunker.ChunkSize != 500 || cfg.Chunker.Overlap != 50 {
		t.Errorf("chunker defaults = %+v", cfg.Chunker)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors defaults = %v", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9999"
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Embedder.OpenAI.Model != "text-embedding-3-large" {
		t.Errorf("model = %q", cfg.Embedder.OpenAI.Model)
	}
	if cfg.Embedder.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %q", cfg.Embedder.OpenAI.APIKeyEnv)
	}
	if cfg.Embedder.Dimension != 384 {
		t.Errorf("Dimension = %d", cfg.Embedder.Dimension)
	}
	if cfg.Chunker.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d", cfg.Chunker.ChunkSize)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Corpus.Path = "corpus/act.pdf"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Corpus.Path != "corpus/act.pdf" {
		t.Errorf("Corpus.Path = %q", loaded.Corpus.Path)
	}
}
