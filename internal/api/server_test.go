package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/bookreader/internal/catalog"
	"github.com/dgallion1/bookreader/internal/config"
	"github.com/dgallion1/bookreader/internal/content"
	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/synopsis"
)

const testAPIKey = "test-key"

var paragraph = strings.Join([]string{
	"The morning came in grey over the harbour and the boats lay quiet at",
	"their moorings. Nobody on the quay had seen the schooner leave, though",
	"three men swore afterwards that they had heard her chain in the night.",
	"It was the kind of story the town liked best, and it grew with telling.",
}, "\n")

func bookText(chapters int) string {
	var sb strings.Builder
	sb.WriteString("*** START OF THE PROJECT GUTENBERG EBOOK THE HARBOUR ***\n\nTHE HARBOUR\n\n")
	for i := 1; i <= chapters; i++ {
		fmt.Fprintf(&sb, "CHAPTER %s\n\n", []string{"", "I", "II", "III", "IV"}[i])
		fmt.Fprintf(&sb, "Section %d opens here.\n\n", i)
		for range 3 {
			sb.WriteString(paragraph + "\n\n")
		}
	}
	sb.WriteString("*** END OF THE PROJECT GUTENBERG EBOOK THE HARBOUR ***\nLicense.")
	return sb.String()
}

type fakeSummarizer struct {
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req synopsis.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "**" + req.Title + "** is a story about boats.", nil
}

type testEnv struct {
	srv       *Server
	downloads atomic.Int32
	lib       *library.Store
}

func newTestEnv(t *testing.T, summarizer synopsis.Summarizer) *testEnv {
	t.Helper()
	env := &testEnv{lib: library.NewStore(time.Hour)}

	var upstream *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/books", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"count":1,"next":null,"previous":null,"results":[{"id":84,"title":"The Harbour","authors":[{"name":"Doe, Jane"}],"formats":{}}]}`)
	})
	mux.HandleFunc("/books/84", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":84,"title":"The Harbour","authors":[{"name":"Doe, Jane"}],"formats":{"text/plain; charset=utf-8":"%s/files/84.txt"}}`, upstream.URL)
	})
	mux.HandleFunc("/books/85", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":85,"title":"Pictures","formats":{"image/jpeg":"%s/files/85.jpg"}}`, upstream.URL)
	})
	mux.HandleFunc("/books/86", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":86,"title":"Broken","formats":{"text/plain":"%s/files/86.txt"}}`, upstream.URL)
	})
	mux.HandleFunc("/files/84.txt", func(w http.ResponseWriter, r *http.Request) {
		env.downloads.Add(1)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(bookText(3)))
	})
	mux.HandleFunc("/files/86.txt", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	upstream = httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	cfg := config.Config{
		ReaderAPIKey:   testAPIKey,
		MaxUploadBytes: 64 * 1024,
	}
	deps := Deps{
		Catalog:  catalog.NewClient(upstream.URL, 5*time.Second),
		Fetcher:  content.NewFetcher(5*time.Second, 1<<20),
		Library:  env.lib,
		Synopsis: summarizer,
		Stats:    synopsis.NewStats(time.Hour),
		Model:    "test-model",
	}
	env.srv = NewServer(deps, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/books/84", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/books/84", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
	if decode(t, rec)["error"] != "invalid api key" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestSearchBooks(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/books/search?q=harbour", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["count"] != float64(1) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := env.do(t, http.MethodGet, "/api/books/search", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/books/search?q=x&page=0", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for page 0, got %d", rec.Code)
	}
}

func TestGetBook(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/books/84", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["title"] != "The Harbour" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := env.do(t, http.MethodGet, "/api/books/999", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown book, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/books/abc", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestBookChapter(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/books/84/chapter?id=Chapter%20II", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["heading"] != "CHAPTER II" {
		t.Errorf("expected heading CHAPTER II, got %v", body["heading"])
	}
	text, _ := body["text"].(string)
	if !strings.HasPrefix(text, "Section 2 opens here.") {
		t.Errorf("unexpected chapter start %q", text[:min(len(text), 40)])
	}
	if strings.Contains(text, "Section 3 opens here.") || strings.Contains(text, "CHAPTER III") {
		t.Error("expected chapter to stop before the next heading")
	}
	if _, ok := body["html"]; ok {
		t.Error("expected no html unless requested")
	}
	if body["doc_id"] != "gutenberg:84" {
		t.Errorf("unexpected doc id %v", body["doc_id"])
	}
}

func TestBookChapter_HTML(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/books/84/chapter?id=3&format=html", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	html, _ := decode(t, rec)["html"].(string)
	if !strings.HasPrefix(html, "<p>Section 3 opens here.</p>") {
		t.Errorf("unexpected html %q", html[:min(len(html), 60)])
	}
}

func TestBookChapter_Default(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/books/84/chapter", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["heading"] != "CHAPTER I" || body["fallback"] != false {
		t.Errorf("expected first chapter, got heading=%v fallback=%v", body["heading"], body["fallback"])
	}
}

func TestBookChapter_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/api/books/84/chapter?id=abc", http.StatusBadRequest},
		{"/api/books/84/chapter?id=9", http.StatusNotFound},
		{"/api/books/999/chapter?id=1", http.StatusNotFound},
		{"/api/books/85/chapter?id=1", http.StatusNotFound},
		{"/api/books/86/chapter?id=1", http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodGet, tt.path, nil, "")
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d: %s", tt.path, tt.want, rec.Code, rec.Body.String())
		}
		if _, ok := decode(t, rec)["error"]; !ok {
			t.Errorf("%s: expected error body", tt.path)
		}
	}
}

func TestBookChapters_CachesDocument(t *testing.T) {
	env := newTestEnv(t, nil)

	for range 3 {
		rec := env.do(t, http.MethodGet, "/api/books/84/chapters", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		chapters, _ := decode(t, rec)["chapters"].([]any)
		if len(chapters) != 3 {
			t.Fatalf("expected 3 chapters, got %d", len(chapters))
		}
		first := chapters[0].(map[string]any)
		if first["number"] != float64(1) || first["label"] != "CHAPTER I" {
			t.Errorf("unexpected first heading %v", first)
		}
	}
	if n := env.downloads.Load(); n != 1 {
		t.Errorf("expected a single download, got %d", n)
	}
	if env.lib.Get("gutenberg:84") == nil {
		t.Error("expected book in library")
	}
}

func TestBookSynopsis(t *testing.T) {
	env := newTestEnv(t, &fakeSummarizer{})
	rec := env.do(t, http.MethodPost, "/api/books/84/synopsis", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["markdown"] != "**The Harbour** is a story about boats." {
		t.Errorf("unexpected markdown %v", body["markdown"])
	}
	if html, _ := body["html"].(string); !strings.Contains(html, "<strong>The Harbour</strong>") {
		t.Errorf("unexpected html %q", html)
	}
}

func TestBookSynopsis_Disabled(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodPost, "/api/books/84/synopsis", nil, ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestBookSynopsis_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, &fakeSummarizer{err: errors.New("bad request")})
	if rec := env.do(t, http.MethodPost, "/api/books/84/synopsis", nil, ""); rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func uploadBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestDocuments_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	body, ct := uploadBody(t, "../../harbour.txt", []byte(bookText(2)))
	rec := env.do(t, http.MethodPost, "/api/documents", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	doc := decode(t, rec)
	docID, _ := doc["doc_id"].(string)
	if !strings.HasPrefix(docID, "upload:") {
		t.Fatalf("unexpected doc id %q", docID)
	}
	if doc["title"] != "harbour" || doc["source"] != "harbour.txt" {
		t.Errorf("unexpected document %v", doc)
	}
	hash := strings.TrimPrefix(docID, "upload:")

	// Uploading the same bytes again returns the cached document.
	body, ct = uploadBody(t, "copy.txt", []byte(bookText(2)))
	if rec := env.do(t, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for duplicate upload, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/documents/"+hash+"/chapters", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if chapters, _ := decode(t, rec)["chapters"].([]any); len(chapters) != 2 {
		t.Errorf("expected 2 chapters, got %d", len(chapters))
	}

	rec = env.do(t, http.MethodGet, "/api/documents/"+docID+"/chapter?id=ii", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if text, _ := decode(t, rec)["text"].(string); !strings.HasPrefix(text, "Section 2 opens here.") {
		t.Errorf("unexpected chapter text %q", text[:min(len(text), 40)])
	}

	rec = env.do(t, http.MethodGet, "/api/documents", nil, "")
	if docs, _ := decode(t, rec)["documents"].([]any); len(docs) != 1 {
		t.Errorf("expected 1 listed document, got %d", len(docs))
	}

	if rec := env.do(t, http.MethodDelete, "/api/documents/"+hash, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/documents/"+hash, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/documents/"+hash+"/chapter", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUploadDocument_Rejects(t *testing.T) {
	env := newTestEnv(t, nil)

	body, ct := uploadBody(t, "book.epub", []byte("data"))
	if rec := env.do(t, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}

	body, ct = uploadBody(t, "big.txt", bytes.Repeat([]byte("a"), 64*1024+1))
	if rec := env.do(t, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized file, got %d", rec.Code)
	}

	body, ct = uploadBody(t, "blank.txt", []byte("  \n\n "))
	if rec := env.do(t, http.MethodPost, "/api/documents", body, ct); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for empty document, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/documents", strings.NewReader("x"), "text/plain"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without multipart form, got %d", rec.Code)
	}
}

func TestLLMStats(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/stats/llm", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["model"] != "test-model" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"book.txt", "book.txt"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\novel.docx`, "novel.docx"},
		{"a..b.txt", "a_b.txt"},
		{"", "unnamed"},
		{"/", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBookChapter_ConcurrentRequestsShareDownload(t *testing.T) {
	env := newTestEnv(t, nil)

	done := make(chan int, 8)
	for range 8 {
		go func() {
			done <- env.do(t, http.MethodGet, "/api/books/84/chapter?id=1", nil, "").Code
		}()
	}
	for range 8 {
		if code := <-done; code != http.StatusOK {
			t.Errorf("expected 200, got %d", code)
		}
	}
	// Requests that arrive after the first download finished hit the cache.
	if n := env.downloads.Load(); n < 1 || n > 8 {
		t.Errorf("unexpected download count %d", n)
	}
}
