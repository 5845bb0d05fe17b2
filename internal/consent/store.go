package consent

import (
	"context"
	"fmt"
	"sync"

	"choreographer/pkg/platform/jsonfile"
	"choreographer/pkg/platform/sentinel"
)

// Store persists consents. List returns them in creation order.
type Store interface {
	Get(ctx context.Context, id string) (Consent, error)
	Put(ctx context.Context, c Consent) error
	List(ctx context.Context) ([]Consent, error)
}

// MemoryStore keeps consents for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]int
	items []Consent
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Consent{}, fmt.Errorf("consent %s: %w", id, sentinel.ErrNotFound)
	}
	return s.items[i], nil
}

func (s *MemoryStore) Put(_ context.Context, c Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[c.ID]; ok {
		s.items[i] = c
		return nil
	}
	s.byID[c.ID] = len(s.items)
	s.items = append(s.items, c)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Consent(nil), s.items...), nil
}

// FileStore keeps every consent in one JSON array so separate CLI runs see
// the same state. Each operation rereads the file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() ([]Consent, error) {
	var items []Consent
	if _, err := jsonfile.Read(s.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FileStore) Get(_ context.Context, id string) (Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return Consent{}, err
	}
	for _, c := range items {
		if c.ID == id {
			return c, nil
		}
	}
	return Consent{}, fmt.Errorf("consent %s: %w", id, sentinel.ErrNotFound)
}

func (s *FileStore) Put(_ context.Context, c Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].ID == c.ID {
			items[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, c)
	}
	return jsonfile.Write(s.path, items)
}

func (s *FileStore) List(_ context.Context) ([]Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
