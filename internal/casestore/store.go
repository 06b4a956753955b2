package casestore

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caseline/caseline/internal/cipher"
	"github.com/caseline/caseline/internal/embed"
)

// #region store

// Store is a durable, similarity-queryable collection of labeled cases. The
// full set lives in memory; every insert rewrites the backing document before
// returning (write-through). A single RWMutex serializes inserts against
// concurrent reads so the append and the persist step act as one unit.
type Store struct {
	mu       sync.RWMutex
	config   Config
	embedder embed.Embedder
	cipher   *cipher.Cipher
	cases    []Case
}

// Open loads the store from its backing document. A missing or corrupt file
// degrades to an empty store; a retrieval layer that lost its history is safe,
// one that crashes the conversation is not.
func Open(config Config, embedder embed.Embedder) *Store {
	s := &Store{config: config, embedder: embedder}
	if config.EncryptAtRest {
		keyPath := config.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(filepath.Dir(config.Path), ".case_key")
		}
		s.cipher = cipher.New(keyPath)
	}
	s.load()
	return s
}

// #endregion store

// #region load

func (s *Store) load() {
	data, err := os.ReadFile(s.config.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("casestore: read %s: %v (starting empty)", s.config.Path, err)
		}
		return
	}
	if s.cipher != nil {
		data, err = s.cipher.Decrypt(data)
		if err != nil {
			log.Printf("casestore: decrypt %s: %v (starting empty)", s.config.Path, err)
			return
		}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("casestore: parse %s: %v (starting empty)", s.config.Path, err)
		return
	}
	s.cases = doc.Cases
	log.Printf("casestore: loaded %d cases from %s", len(s.cases), s.config.Path)
}

// #endregion load

// #region persist

// persist writes the whole document to a temp file and renames it into place.
// Caller must hold the write lock.
func (s *Store) persist() {
	data, err := json.Marshal(document{Cases: s.cases})
	if err != nil {
		log.Printf("casestore: marshal: %v", err)
		return
	}
	if s.cipher != nil {
		data, err = s.cipher.Encrypt(data)
		if err != nil {
			log.Printf("casestore: encrypt: %v", err)
			return
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
		log.Printf("casestore: mkdir: %v", err)
		return
	}
	tmp := s.config.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		log.Printf("casestore: write %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, s.config.Path); err != nil {
		log.Printf("casestore: rename: %v", err)
	}
}

// #endregion persist

// #region insert

// Insert embeds sourceText and appends a new labeled case, persisting the
// store before returning. It reports false — and stores nothing — when the
// text is blank, the sessionRef was already inserted, or the embedding call
// fails. Provider failures never propagate: a skipped insert only makes the
// system more likely to escalate, which is the safe direction.
func (s *Store) Insert(ctx context.Context, sourceText, label, summary, sessionRef string) (Case, bool) {
	text := strings.TrimSpace(sourceText)
	if text == "" {
		log.Printf("casestore: empty case text, skipping")
		return Case{}, false
	}

	if sessionRef != "" && s.hasSession(sessionRef) {
		log.Printf("casestore: case for session %s already exists, skipping", sessionRef)
		return Case{}, false
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil || len(embedding) == 0 {
		log.Printf("casestore: embedding failed, skipping: %v", err)
		return Case{}, false
	}

	if summary == "" {
		summary = text
		if s.config.SummaryLen > 0 && len(summary) > s.config.SummaryLen {
			summary = summary[:s.config.SummaryLen]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock; a concurrent insert may have won.
	if sessionRef != "" {
		for _, c := range s.cases {
			if c.SessionRef == sessionRef {
				log.Printf("casestore: case for session %s already exists, skipping", sessionRef)
				return Case{}, false
			}
		}
	}

	c := Case{
		ID:         len(s.cases),
		SourceText: text,
		Label:      label,
		Summary:    summary,
		Embedding:  embedding,
		SessionRef: sessionRef,
		CreatedAt:  time.Now().UTC(),
	}
	s.cases = append(s.cases, c)
	s.persist()
	log.Printf("casestore: added labeled case: %s (session: %s)", label, sessionRef)
	return c, true
}

func (s *Store) hasSession(sessionRef string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.SessionRef == sessionRef {
			return true
		}
	}
	return false
}

// #endregion insert

// #region read

// All returns every case in insertion order.
func (s *Store) All() []Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// Count returns the number of stored cases.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Stats returns totals and per-label counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, c := range s.cases {
		label := c.Label
		if label == "" {
			label = "unknown"
		}
		counts[label]++
	}
	return Stats{TotalCases: len(s.cases), CountsByLabel: counts}
}

// #endregion read

// #region reset

// Reset clears all cases and persists the empty document.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = nil
	s.persist()
}

// #endregion reset

// #region replace

// Replace overwrites a case's embedding in place and persists. Used by the
// re-embed pass after a provider or model change; ids and labels are kept.
func (s *Store) Replace(id int, embedding []float32) bool {
	if len(embedding) == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases[i].Embedding = embedding
			s.persist()
			return true
		}
	}
	return false
}

// #endregion replace
