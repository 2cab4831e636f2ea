package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/parser"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	key := library.UploadKey(data)
	if e := s.deps.Library.Get(key); e != nil {
		writeJSON(w, http.StatusOK, e)
		return
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("parse upload failed", "filename", filename, "error", err)
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(doc.Text) == "" {
		jsonError(w, "document contains no text", http.StatusUnprocessableEntity)
		return
	}

	title := doc.Title
	if v := strings.TrimSpace(r.FormValue("title")); v != "" {
		title = v
	}
	e := &library.Entry{
		Key:    key,
		Title:  title,
		Source: filename,
		Text:   doc.Text,
	}
	s.deps.Library.Put(e)
	s.log.Info("document uploaded", "doc_id", key, "filename", filename, "chars", e.Chars)

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.deps.Library.List("upload:")
	if docs == nil {
		docs = []*library.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := uploadKey(w, r)
	if !ok {
		return
	}
	if !s.deps.Library.Delete(key) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": key, "deleted": true})
}

func (s *Server) handleDocumentChapters(w http.ResponseWriter, r *http.Request) {
	e, ok := s.documentEntry(w, r)
	if !ok {
		return
	}
	s.writeOutline(w, e)
}

func (s *Server) handleDocumentChapter(w http.ResponseWriter, r *http.Request) {
	e, ok := s.documentEntry(w, r)
	if !ok {
		return
	}
	s.writeChapter(w, r, e)
}

// uploadKey accepts a document id with or without its "upload:" prefix.
func uploadKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "docID")
	id = strings.TrimPrefix(id, "upload:")
	if id == "" {
		jsonError(w, "document id is required", http.StatusBadRequest)
		return "", false
	}
	return "upload:" + id, true
}

func (s *Server) documentEntry(w http.ResponseWriter, r *http.Request) (*library.Entry, bool) {
	key, ok := uploadKey(w, r)
	if !ok {
		return nil, false
	}
	e := s.deps.Library.Get(key)
	if e == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	return e, true
}
