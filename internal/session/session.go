// Package session holds the documents being edited. Each session owns one
// document; writers are serialized per session and a mutation only becomes
// visible once it has fully succeeded.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// ErrNotFound is returned for unknown or evicted sessions.
var ErrNotFound = errors.New("session not found")

// Persister saves session documents outside the process.
type Persister interface {
	Save(ctx context.Context, id string, doc *doctree.Document) error
	Load(ctx context.Context, id string) (*doctree.Document, error)
	// Delete reports whether a document was stored under id.
	Delete(ctx context.Context, id string) (bool, error)
}

// Session is one document under edit.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	doc       *doctree.Document
	version   int
	updatedAt time.Time
	persist   Persister
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID        string            `json:"session_id"`
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Document  *doctree.Document `json:"document"`
}

// Document returns the current document. Documents are never modified in
// place, so the result stays valid after later edits.
func (s *Session) Document() *doctree.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Snapshot returns the current document together with its version.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.ID, Version: s.version, UpdatedAt: s.updatedAt, Document: s.doc}
}

func (s *Session) lastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Apply runs fn on the current document while holding the session's write
// lock. The returned document replaces the current one only when fn
// succeeds (and, with persistence enabled, once it has been saved). The
// snapshot describes exactly the state this call produced.
func (s *Session) Apply(ctx context.Context, fn func(*doctree.Document) (*doctree.Document, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.doc)
	if err != nil {
		return Snapshot{}, err
	}
	if next == nil {
		return Snapshot{}, fmt.Errorf("session %s: mutation returned no document", s.ID)
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, s.ID, next); err != nil {
			return Snapshot{}, fmt.Errorf("session %s: %w", s.ID, err)
		}
	}
	s.doc = next
	s.version++
	s.updatedAt = time.Now()
	return Snapshot{ID: s.ID, Version: s.version, UpdatedAt: s.updatedAt, Document: next}, nil
}

// Store is a thread-safe registry of sessions with idle eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	persist  Persister
	reg      *schema.Registry
	log      *slog.Logger
}

// NewStore returns a store evicting sessions idle longer than ttl. persist
// may be nil.
func NewStore(ttl time.Duration, persist Persister, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		persist:  persist,
		reg:      schema.Default(),
		log:      log,
	}
}

// Create starts a session owning doc.
func (st *Store) Create(ctx context.Context, doc *doctree.Document) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		doc:       doc,
		version:   1,
		updatedAt: now,
		persist:   st.persist,
	}
	if st.persist != nil {
		if err := st.persist.Save(ctx, s.ID, doc); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

// Get returns the session with id, restoring it from the persister when
// it is not in memory. A restored document must still satisfy the schema.
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		return s, nil
	}
	if st.persist == nil {
		return nil, ErrNotFound
	}
	doc, err := st.persist.Load(ctx, id)
	if err != nil {
		st.log.Debug("session restore failed", "session_id", id, "error", err)
		return nil, ErrNotFound
	}
	if err := st.reg.ValidateDocument(doc, true); err != nil {
		st.log.Warn("session restore rejected", "session_id", id, "error", err)
		return nil, ErrNotFound
	}

	now := time.Now()
	restored := &Session{ID: id, CreatedAt: now, doc: doc, version: 1, updatedAt: now, persist: st.persist}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s, nil
	}
	st.sessions[id] = restored
	st.log.Info("session restored", "session_id", id)
	return restored, nil
}

// Delete ends a session and removes its persisted document.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if st.persist != nil {
		removed, err := st.persist.Delete(ctx, id)
		if err != nil {
			return err
		}
		ok = ok || removed
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of sessions in memory.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cleanup evicts sessions idle longer than the TTL from memory. Persisted
// documents stay restorable.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	evicted := 0
	for id, s := range st.sessions {
		if now.Sub(s.lastUpdate()) > st.ttl {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}
