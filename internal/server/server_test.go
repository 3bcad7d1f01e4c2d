package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ragserver/internal/chat"
	"ragserver/internal/chunker"
	"ragserver/internal/embedding/hashing"
	"ragserver/internal/service"
	"ragserver/internal/summarizer"
	"ragserver/internal/vectorstore/memory"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) Complete(_ context.Context, _ []chat.Message, _ string) (string, error) {
	return p.reply, p.err
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	emb := hashing.NewEmbedder(64)
	svc := service.New(
		chunker.NewSentenceChunker(120, 0),
		emb,
		memory.NewIndex(emb.Dimension()),
		summarizer.NewFrequencySummarizer(),
		2,
	)
	srv := New(Config{
		Service:        svc,
		Providers:      map[string]chat.Provider{"stub": &stubProvider{reply: "answer"}},
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return srv, srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out := decode(t, rec); out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}

func TestUploadDocument(t *testing.T) {
	_, h := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "Privacy notices must be clear. Consent records must be kept. Breach reports are mandatory.")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["status"] != "success" {
		t.Fatalf("body = %v", out)
	}
	report, _ := out["report"].(map[string]any)
	if report["document_name"] != "notes.txt" {
		t.Errorf("report = %v", report)
	}
	if report["success_count"].(float64) != report["chunk_count"].(float64) {
		t.Errorf("expected all chunks stored, report = %v", report)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	_, h := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "photo.png")
	fmt.Fprint(fw, "binary junk")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if out := decode(t, rec); out["status"] != "failed" {
		t.Errorf("body = %v", out)
	}
}

func TestStoreChunkThenSearch(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/api/chunks", map[string]any{
		"text":     "Fiduciaries must report data breaches promptly.",
		"metadata": map[string]any{"document_name": "adhoc.txt", "chunk_id": 0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if out := decode(t, rec); out["index_size"].(float64) != 1 {
		t.Fatalf("index_size = %v", out["index_size"])
	}

	rec = postJSON(t, h, "/api/search", map[string]any{"query": "report data breaches", "k": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	out := decode(t, rec)
	if out["status"] != "success" {
		t.Fatalf("body = %v", out)
	}
	results, _ := out["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("results = %v", results)
	}
	first, _ := results[0].(map[string]any)
	if !strings.Contains(first["text"].(string), "breaches") {
		t.Errorf("result = %v", first)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	_, h := newTestServer(t)
	rec := postJSON(t, h, "/api/search", map[string]any{"query": "anything", "k": 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decode(t, rec)
	if out["status"] != "failed" {
		t.Fatalf("body = %v", out)
	}
	if results, ok := out["results"].([]any); !ok || len(results) != 0 {
		t.Errorf("results = %v, want empty list", out["results"])
	}
}

func TestChat(t *testing.T) {
	_, h := newTestServer(t)

	rec := postJSON(t, h, "/api/chat", map[string]any{"message": "hello", "model": "stub"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if out := decode(t, rec); out["response"] != "answer" {
		t.Errorf("body = %v", out)
	}
}

func TestChatUnknownModel(t *testing.T) {
	_, h := newTestServer(t)
	rec := postJSON(t, h, "/api/chat", map[string]any{"message": "hello", "model": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if out := decode(t, rec); out["status"] != "failed" {
		t.Errorf("body = %v", out)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want unset", got)
	}
}
