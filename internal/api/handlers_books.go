package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/bookreader/internal/chapter"
	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/render"
	"github.com/dgallion1/bookreader/internal/synopsis"
	"github.com/go-chi/chi/v5"
)

var errNoReadableFormat = errors.New("book has no readable text format")

// synopsisExcerptChars bounds the opening text sent with a synopsis request.
const synopsisExcerptChars = 20000

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = n
	}

	res, err := s.deps.Catalog.Search(r.Context(), q, page)
	if err != nil {
		s.log.Error("catalog search failed", "query", q, "error", err)
		jsonError(w, "catalog search failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := s.deps.Catalog.Get(r.Context(), id)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleBookChapters(w http.ResponseWriter, r *http.Request) {
	e, ok := s.bookEntry(w, r)
	if !ok {
		return
	}
	s.writeOutline(w, e)
}

func (s *Server) handleBookChapter(w http.ResponseWriter, r *http.Request) {
	e, ok := s.bookEntry(w, r)
	if !ok {
		return
	}
	s.writeChapter(w, r, e)
}

func (s *Server) handleBookSynopsis(w http.ResponseWriter, r *http.Request) {
	if s.deps.Synopsis == nil {
		jsonError(w, "synopsis generation is not configured", http.StatusServiceUnavailable)
		return
	}
	e, ok := s.bookEntry(w, r)
	if !ok {
		return
	}

	// Skip front matter when the book has a recognizable first chapter.
	excerpt := e.Text[chapter.LocateDefault(e.Text).Start:]
	if rs := []rune(excerpt); len(rs) > synopsisExcerptChars {
		excerpt = string(rs[:synopsisExcerptChars])
	}

	text, err := synopsis.Generate(r.Context(), s.deps.Synopsis, synopsis.Request{
		Title:   e.Title,
		Authors: e.Authors,
		Excerpt: excerpt,
	}, s.log)
	if err != nil {
		jsonError(w, "synopsis generation failed", http.StatusBadGateway)
		return
	}
	html, err := render.MarkdownHTML(text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   e.Key,
		"title":    e.Title,
		"markdown": text,
		"html":     html,
	})
}

func bookID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "bookID"))
	if err != nil || id <= 0 {
		jsonError(w, "book id must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// bookEntry returns the cached Document for the request's book, downloading
// and extracting it on a miss. Failures have already been written to w.
func (s *Server) bookEntry(w http.ResponseWriter, r *http.Request) (*library.Entry, bool) {
	id, ok := bookID(w, r)
	if !ok {
		return nil, false
	}
	e, err := s.loadBook(r.Context(), id)
	if err != nil {
		s.log.Warn("load book failed", "book_id", id, "error", err)
		jsonError(w, err.Error(), errorStatus(err))
		return nil, false
	}
	return e, true
}

func (s *Server) loadBook(ctx context.Context, id int) (*library.Entry, error) {
	key := library.GutenbergKey(id)
	if e := s.deps.Library.Get(key); e != nil {
		return e, nil
	}

	// Concurrent readers of an uncached book share one download. The shared
	// work must outlive whichever request started it.
	v, err, _ := s.loads.Do(key, func() (any, error) {
		return s.fetchBook(context.WithoutCancel(ctx), id, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*library.Entry), nil
}

func (s *Server) fetchBook(ctx context.Context, id int, key string) (*library.Entry, error) {
	book, err := s.deps.Catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u := book.TextURL()
	if u == "" {
		return nil, fmt.Errorf("%w: %d", errNoReadableFormat, id)
	}
	text, err := s.deps.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	e := &library.Entry{
		Key:     key,
		Title:   book.Title,
		Authors: book.AuthorNames(),
		Source:  u,
		Text:    text,
	}
	s.deps.Library.Put(e)
	s.log.Info("book cached", "book_id", id, "source", u, "chars", e.Chars)
	return e, nil
}
