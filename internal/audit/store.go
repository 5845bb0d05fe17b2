package audit

import (
	"context"
	"sync"

	"choreographer/internal/domain"
	"choreographer/pkg/platform/jsonfile"
)

// Store persists the full ledger sequence.
type Store interface {
	Load(ctx context.Context) ([]domain.AuditEntry, error)
	Save(ctx context.Context, entries []domain.AuditEntry) error
}

// FileStore keeps the ledger as one JSON array, replaced atomically on save.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	if _, err := jsonfile.Read(s.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) Save(_ context.Context, entries []domain.AuditEntry) error {
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return jsonfile.Write(s.path, entries)
}

// MemoryStore holds the last saved sequence in memory. It records how many
// saves happened so tests can assert write-through behaviour.
type MemoryStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	saves   int
	failErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEntry(nil), s.entries...), nil
}

func (s *MemoryStore) Save(_ context.Context, entries []domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.entries = append([]domain.AuditEntry(nil), entries...)
	s.saves++
	return nil
}

// Saves returns the number of successful saves.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailWith makes subsequent saves return err; nil restores normal saves.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}
