package memory

import (
	"fmt"
	"sort"
	"sync"

	"ragserver/internal/domain"
	"ragserver/internal/vectorstore"
)

// Index is an in-memory exact nearest-neighbor index over squared Euclidean
// distance. Vectors, texts and metadata live in three parallel slices that
// stay index-aligned: each insert appends to all three under one lock.
//
// It is safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	texts     []string
	metadata  []domain.ChunkMetadata
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dimension int) *Index {
	return &Index{dimension: dimension}
}

func (ix *Index) Insert(vector []float64, text string, meta domain.ChunkMetadata) (int, error) {
	if len(vector) != ix.dimension {
		return 0, fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(vector), ix.dimension)
	}
	// Copy before taking the lock so the caller cannot mutate stored state.
	cp := make([]float64, len(vector))
	copy(cp, vector)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = append(ix.vectors, cp)
	ix.texts = append(ix.texts, text)
	ix.metadata = append(ix.metadata, meta)
	if len(ix.texts) != len(ix.vectors) || len(ix.metadata) != len(ix.vectors) {
		return 0, fmt.Errorf("vector index misaligned: %d vectors, %d texts, %d metadata",
			len(ix.vectors), len(ix.texts), len(ix.metadata))
	}
	return len(ix.vectors), nil
}

func (ix *Index) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return nil, vectorstore.ErrEmptyIndex
	}
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(vector), ix.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	type scored struct {
		idx  int
		dist float64
	}
	scores := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = scored{idx: i, dist: squaredL2(vector, v)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].dist < scores[j].dist })

	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, s := range scores[:topK] {
		results = append(results, domain.SearchResult{
			Text:     ix.texts[s.idx],
			Metadata: ix.metadata[s.idx],
			Distance: s.dist,
		})
	}
	return results, nil
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. No normalization is applied, so the embedder's output scale
// directly affects result ordering.
func squaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
