package domain

import "context"

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a fixed-dimension numeric vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex stores embeddings and supports nearest-neighbor search.
// Growth is append-only; there is no delete or update.
type VectorIndex interface {
	// Insert appends a vector together with its chunk text and metadata
	// and returns the new total count.
	Insert(vector []float64, text string, meta ChunkMetadata) (int, error)

	// Search returns the topK stored chunks closest to the query vector,
	// ordered by ascending distance. Fewer than topK results are returned
	// when the index holds fewer vectors.
	Search(vector []float64, topK int) ([]SearchResult, error)

	// Len returns the number of stored vectors.
	Len() int
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
