// Package library caches extracted Documents so repeated chapter requests for
// the same book skip the download and extraction work.
package library

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Entry is one cached Document.
type Entry struct {
	Key      string    `json:"doc_id"`
	Title    string    `json:"title"`
	Authors  []string  `json:"authors,omitempty"`
	Source   string    `json:"source"`
	Chars    int       `json:"chars"`
	AddedAt  time.Time `json:"added_at"`
	Text     string    `json:"-"`
	lastSeen time.Time
}

// Store is a thread-safe in-memory Document cache with idle eviction.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	sweep   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(ttl time.Duration) *Store {
	sweep := ttl / 4
	if sweep < time.Second {
		sweep = time.Second
	}
	if sweep > 5*time.Minute {
		sweep = 5 * time.Minute
	}
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		sweep:   sweep,
	}
}

// GutenbergKey returns the cache key for a catalog book.
func GutenbergKey(id int) string {
	return "gutenberg:" + strconv.Itoa(id)
}

// UploadKey returns the cache key for uploaded file bytes.
func UploadKey(data []byte) string {
	return "upload:" + ContentHashHex(data)
}

// Put stores e under e.Key, replacing any previous entry.
func (s *Store) Put(e *Entry) {
	now := time.Now()
	if e.AddedAt.IsZero() {
		e.AddedAt = now
	}
	e.Chars = len([]rune(e.Text))

	s.mu.Lock()
	defer s.mu.Unlock()
	e.lastSeen = now
	s.entries[e.Key] = e
}

// Get returns the entry for key and marks it as recently used, or nil.
func (s *Store) Get(key string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key]
	if e != nil {
		e.lastSeen = time.Now()
	}
	return e
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// List returns the entries whose key starts with prefix, oldest first.
func (s *Store) List(prefix string) []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Entry
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup removes entries not read or written within the TTL and returns how
// many were evicted.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for key, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Start launches the periodic cleanup goroutine.
func (s *Store) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Stop halts the cleanup goroutine and waits for it to exit.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
