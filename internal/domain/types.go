package domain

// ChunkMetadata records where a chunk came from.
type ChunkMetadata struct {
	DocumentName string `json:"document_name"`
	ChunkID      int    `json:"chunk_id"`
}

// Document is a single piece of source text loaded into the system.
type Document struct {
	Name    string
	Content string
}

// Chunk is a bounded-length span of document text used for indexing.
// Chunks are immutable once created.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchResult is a matching chunk with its distance to the query vector.
// Lower distance means higher similarity.
type SearchResult struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// IngestReport summarizes one ingestion run over a document.
type IngestReport struct {
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count"`
	SuccessCount int    `json:"success_count"`
	// FailedChunks holds the zero-based indices of chunks whose embedding
	// failed. Those chunks are skipped, not retried.
	FailedChunks []int  `json:"failed_chunks,omitempty"`
	TotalVectors int    `json:"total_vectors"`
	Snippet      string `json:"snippet,omitempty"`
	Summary      string `json:"summary,omitempty"`
}
