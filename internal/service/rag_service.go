package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ragserver/internal/domain"
	"ragserver/internal/extract"
)

// snippetLimit bounds the extracted-text preview returned with ingest reports.
const snippetLimit = 500

// Service drives the retrieval pipeline: extraction, chunking, embedding and
// indexing on the write path, embedding and nearest-neighbor lookup on the
// read path.
type Service struct {
	chunker             domain.Chunker
	embedder            domain.Embedder
	index               domain.VectorIndex
	summarizer          domain.Summarizer
	summaryMaxSentences int
	log                 *slog.Logger
}

func New(chunker domain.Chunker, embedder domain.Embedder, index domain.VectorIndex, summarizer domain.Summarizer, summaryMaxSentences int) *Service {
	return &Service{
		chunker:             chunker,
		embedder:            embedder,
		index:               index,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
		log:                 slog.Default(),
	}
}

// IngestDocument extracts text from a raw uploaded document, chunks it and
// stores one embedding per chunk. A chunk whose embedding fails is recorded
// in the report and skipped; a single bad chunk never aborts the run.
func (s *Service) IngestDocument(ctx context.Context, data []byte, filename string) (*domain.IngestReport, error) {
	text, err := extract.Text(data, filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	chunks, err := s.chunker.Chunk(domain.Document{Name: filename, Content: text})
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", filename, err)
	}

	report := &domain.IngestReport{
		DocumentName: filename,
		ChunkCount:   len(chunks),
		Snippet:      snippet(text),
	}
	for i, chunk := range chunks {
		if _, err := s.IngestChunk(ctx, chunk.Text, chunk.Metadata); err != nil {
			s.log.Warn("chunk ingestion failed",
				"document", filename, "chunk", i, "error", err)
			report.FailedChunks = append(report.FailedChunks, i)
			continue
		}
		report.SuccessCount++
	}
	report.TotalVectors = s.index.Len()

	if s.summarizer != nil && text != "" {
		if summary, err := s.summarizer.Summarize(text, s.summaryMaxSentences); err == nil {
			report.Summary = summary
		}
	}
	return report, nil
}

// IngestFile ingests a document from the local filesystem. Used for the
// pre-seeded corpus document.
func (s *Service) IngestFile(ctx context.Context, path string) (*domain.IngestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus document: %w", err)
	}
	return s.IngestDocument(ctx, data, filepath.Base(path))
}

// IngestChunk embeds one chunk of text and appends it to the index,
// returning the new total vector count. The whole-document path is a loop
// over this.
func (s *Service) IngestChunk(ctx context.Context, text string, meta domain.ChunkMetadata) (int, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embed chunk: %w", err)
	}
	total, err := s.index.Insert(vec, text, meta)
	if err != nil {
		return 0, fmt.Errorf("index insert: %w", err)
	}
	return total, nil
}

// Search embeds the query with the same embedder used at ingestion time and
// returns the k closest stored chunks, ascending by distance.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.index.Search(vec, k)
}

// TotalVectors reports the current index size.
func (s *Service) TotalVectors() int { return s.index.Len() }

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return text
}
