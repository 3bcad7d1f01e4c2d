package qdrant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ragserver/internal/domain"
	"ragserver/internal/vectorstore"
)

// Index is a minimal REST client to Qdrant implementing the VectorIndex
// contract. The collection is created with Euclid distance so result
// ordering matches the in-memory index.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config, dimension int) (*Index, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ix := &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  dimension,
		client:     &http.Client{Timeout: timeout},
	}
	// Create collection if missing; Qdrant returns 200 when it already
	// exists with the same schema.
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Euclid",
		},
	}
	if err := ix.putJSON(fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), body); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) Insert(vector []float64, text string, meta domain.ChunkMetadata) (int, error) {
	if len(vector) != ix.dimension {
		return 0, fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(vector), ix.dimension)
	}
	point := map[string]any{
		"id":     uuid.NewString(),
		"vector": vector,
		"payload": map[string]any{
			"document_name": meta.DocumentName,
			"chunk_id":      meta.ChunkID,
			"text":          text,
		},
	}
	body := map[string]any{"points": []any{point}}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", ix.url, ix.collection)
	if err := ix.putJSON(url, body); err != nil {
		return 0, err
	}
	return ix.Len(), nil
}

func (ix *Index) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if ix.Len() == 0 {
		return nil, vectorstore.ErrEmptyIndex
	}
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", ix.url, ix.collection)
	if err := ix.postJSON(url, req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := domain.SearchResult{
			// Qdrant reports plain Euclidean distance; square it so
			// callers see the same metric as the in-memory index.
			Distance: r.Score * r.Score,
		}
		if v, ok := r.Payload["text"].(string); ok {
			res.Text = v
		}
		if v, ok := r.Payload["document_name"].(string); ok {
			res.Metadata.DocumentName = v
		}
		if v, ok := r.Payload["chunk_id"].(float64); ok {
			res.Metadata.ChunkID = int(v)
		}
		results = append(results, res)
	}
	return results, nil
}

func (ix *Index) Len() int {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", ix.url, ix.collection)
	if err := ix.postJSON(url, map[string]any{"exact": true}, &resp); err != nil {
		return 0
	}
	return resp.Result.Count
}

func (ix *Index) putJSON(url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (ix *Index) postJSON(url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
