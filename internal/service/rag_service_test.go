package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ragserver/internal/chunker"
	"ragserver/internal/domain"
	"ragserver/internal/extract"
	"ragserver/internal/summarizer"
	"ragserver/internal/vectorstore"
	"ragserver/internal/vectorstore/memory"
)

// flakyEmbedder returns a constant vector but fails on selected calls.
type flakyEmbedder struct {
	dim      int
	calls    int
	failOn   map[int]bool // 1-based call number
	lastText string
}

func (f *flakyEmbedder) Name() string   { return "flaky" }
func (f *flakyEmbedder) Dimension() int { return f.dim }

func (f *flakyEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls++
	f.lastText = text
	if f.failOn[f.calls] {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	vec := make([]float64, f.dim)
	vec[0] = float64(f.calls)
	return vec, nil
}

func newTestService(emb domain.Embedder, dim int) (*Service, *memory.Index) {
	ix := memory.NewIndex(dim)
	c := chunker.NewSentenceChunker(40, 0)
	return New(c, emb, ix, summarizer.NewFrequencySummarizer(), 2), ix
}

func TestIngestDocumentAllChunksStored(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{}}
	svc, ix := newTestService(emb, 4)

	text := "First sentence goes right here. Second sentence goes right here. Third sentence goes right here."
	report, err := svc.IngestDocument(context.Background(), []byte(text), "doc.txt")
	if err != nil {
		t.Fatal(err)
	}
	if report.ChunkCount != 3 {
		t.Fatalf("ChunkCount = %d, want 3", report.ChunkCount)
	}
	if report.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3", report.SuccessCount)
	}
	if len(report.FailedChunks) != 0 {
		t.Fatalf("FailedChunks = %v, want none", report.FailedChunks)
	}
	if report.TotalVectors != 3 || ix.Len() != 3 {
		t.Fatalf("TotalVectors = %d, index Len = %d, want 3", report.TotalVectors, ix.Len())
	}
	if report.Summary == "" {
		t.Error("expected a non-empty summary")
	}
	if !strings.HasPrefix(report.Snippet, "First sentence") {
		t.Errorf("Snippet = %q", report.Snippet)
	}
}

func TestIngestDocumentPartialFailure(t *testing.T) {
	// Second embedding call fails: chunk index 1 is skipped, the rest land.
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{2: true}}
	svc, ix := newTestService(emb, 4)

	text := "First sentence goes right here. Second sentence goes right here. Third sentence goes right here."
	report, err := svc.IngestDocument(context.Background(), []byte(text), "doc.txt")
	if err != nil {
		t.Fatal(err)
	}
	if report.SuccessCount != 2 {
		t.Fatalf("SuccessCount = %d, want 2", report.SuccessCount)
	}
	if len(report.FailedChunks) != 1 || report.FailedChunks[0] != 1 {
		t.Fatalf("FailedChunks = %v, want [1]", report.FailedChunks)
	}
	if ix.Len() != 2 {
		t.Fatalf("index Len = %d, want 2", ix.Len())
	}
}

func TestIngestDocumentUnsupportedType(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{}}
	svc, _ := newTestService(emb, 4)
	_, err := svc.IngestDocument(context.Background(), []byte("x"), "photo.png")
	if !errors.Is(err, extract.ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestIngestDocumentEmptyText(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{}}
	svc, ix := newTestService(emb, 4)
	report, err := svc.IngestDocument(context.Background(), []byte("   \n  "), "blank.txt")
	if err != nil {
		t.Fatal(err)
	}
	if report.ChunkCount != 0 || report.SuccessCount != 0 {
		t.Fatalf("report = %+v, want zero counts", report)
	}
	if ix.Len() != 0 {
		t.Fatalf("index Len = %d, want 0", ix.Len())
	}
}

func TestIngestChunkThenSearch(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{}}
	svc, _ := newTestService(emb, 4)

	meta := domain.ChunkMetadata{DocumentName: "adhoc.txt", ChunkID: 0}
	total, err := svc.IngestChunk(context.Background(), "stored text", meta)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	results, err := svc.Search(context.Background(), "query", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Text != "stored text" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Metadata != meta {
		t.Errorf("metadata = %+v, want %+v", results[0].Metadata, meta)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{}}
	svc, _ := newTestService(emb, 4)
	_, err := svc.Search(context.Background(), "anything", 5)
	if !errors.Is(err, vectorstore.ErrEmptyIndex) {
		t.Fatalf("err = %v, want ErrEmptyIndex", err)
	}
}

func TestSearchEmbeddingFailure(t *testing.T) {
	emb := &flakyEmbedder{dim: 4, failOn: map[int]bool{2: true}}
	svc, _ := newTestService(emb, 4)
	if _, err := svc.IngestChunk(context.Background(), "text", domain.ChunkMetadata{}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Search(context.Background(), "query", 5)
	if err == nil || errors.Is(err, vectorstore.ErrEmptyIndex) {
		t.Fatalf("err = %v, want embedding failure distinct from ErrEmptyIndex", err)
	}
}
