package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ragserver/internal/chat"
	"ragserver/internal/domain"
	"ragserver/internal/extract"
	"ragserver/internal/vectorstore"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUploadDocument accepts a multipart document, extracts its text and
// ingests every chunk. Individual chunk failures are reported, not fatal.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, fmt.Sprintf("missing file field: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	report, err := s.svc.IngestDocument(r.Context(), data, header.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			s.writeFailure(w, http.StatusBadRequest, "unsupported file type, upload PDF or TXT")
			return
		}
		s.writeFailure(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"report": report,
	})
}

type storeChunkRequest struct {
	Text     string               `json:"text"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

// handleStoreChunk embeds and stores one externally supplied chunk.
func (s *Server) handleStoreChunk(w http.ResponseWriter, r *http.Request) {
	var req storeChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Text == "" {
		s.writeFailure(w, http.StatusBadRequest, "text is required")
		return
	}
	total, err := s.svc.IngestChunk(r.Context(), req.Text, req.Metadata)
	if err != nil {
		s.writeFailure(w, http.StatusBadGateway, fmt.Sprintf("embedding failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"index_size": total,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		s.writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K <= 0 {
		req.K = 5
	}
	results, err := s.svc.Search(r.Context(), req.Query, req.K)
	if err != nil {
		// An empty index is "no data yet", not a fault: report it as a
		// failed status with an empty result list.
		if errors.Is(err, vectorstore.ErrEmptyIndex) {
			s.writeJSON(w, http.StatusOK, map[string]any{
				"status":  "failed",
				"error":   "no vectors in the index to search",
				"results": []domain.SearchResult{},
			})
			return
		}
		s.writeFailure(w, http.StatusBadGateway, fmt.Sprintf("search failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": results,
	})
}

type chatRequest struct {
	Message string         `json:"message"`
	Model   string         `json:"model"`
	History []chat.Message `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Message == "" {
		s.writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}
	provider, ok := s.providers[req.Model]
	if !ok {
		s.writeFailure(w, http.StatusBadRequest,
			fmt.Sprintf("%v: %q", chat.ErrUnknownModel, req.Model))
		return
	}
	answer, err := provider.Complete(r.Context(), req.History, req.Message)
	if err != nil {
		s.writeFailure(w, http.StatusBadGateway, fmt.Sprintf("chat completion failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"response": answer,
	})
}

// handleCorpusIngest ingests the pre-configured on-disk corpus document.
func (s *Server) handleCorpusIngest(w http.ResponseWriter, r *http.Request) {
	if s.corpusPath == "" {
		s.writeFailure(w, http.StatusNotFound, "no corpus document configured")
		return
	}
	report, err := s.svc.IngestFile(r.Context(), s.corpusPath)
	if err != nil {
		s.writeFailure(w, http.StatusUnprocessableEntity, fmt.Sprintf("corpus ingestion failed: %v", err))
		return
	}
	if report.ChunkCount == 0 {
		s.writeFailure(w, http.StatusUnprocessableEntity, "corpus document produced no chunks")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"report": report,
	})
}
