package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookreader/internal/catalog"
	"github.com/dgallion1/bookreader/internal/chapter"
	"github.com/dgallion1/bookreader/internal/content"
	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/render"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, chapter.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, chapter.ErrChapterNotFound),
		errors.Is(err, catalog.ErrBookNotFound),
		errors.Is(err, errNoReadableFormat):
		return http.StatusNotFound
	case errors.Is(err, content.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// writeChapter answers a chapter request against a cached Document. An empty
// id selects the opening chapter.
func (s *Server) writeChapter(w http.ResponseWriter, r *http.Request, e *library.Entry) {
	query := strings.TrimSpace(r.URL.Query().Get("id"))

	var ch chapter.Chapter
	if query == "" {
		ch = chapter.LocateDefault(e.Text)
	} else {
		var err error
		ch, err = chapter.LocateQuery(e.Text, query)
		if err != nil {
			jsonError(w, err.Error(), errorStatus(err))
			return
		}
	}

	resp := map[string]any{
		"doc_id":   e.Key,
		"title":    e.Title,
		"heading":  ch.Heading,
		"start":    ch.Start,
		"end":      ch.End,
		"score":    ch.Score,
		"fallback": ch.Fallback,
		"text":     ch.Text,
	}
	if r.URL.Query().Get("format") == "html" {
		html, err := render.ChapterHTML(ch.Text)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["html"] = html
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeOutline(w http.ResponseWriter, e *library.Entry) {
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   e.Key,
		"title":    e.Title,
		"chapters": chapter.Outline(e.Text),
	})
}
