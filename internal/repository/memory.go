package repository

import (
	"context"
	"fmt"
	"sync"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/models"

	"github.com/goccy/go-json"
)

// MemoryStore keeps identities and documents in process memory. It backs the
// "memory" store driver and the tests.
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[string]models.Identity
	byEmail    map[string]string
	documents  map[string]memoryDocument
}

type memoryDocument struct {
	raw      []byte
	revision int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[string]models.Identity),
		byEmail:    make(map[string]string),
		documents:  make(map[string]memoryDocument),
	}
}

// Create stores a new identity
func (s *MemoryStore) Create(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(identity.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrDuplicateEmail
	}
	stored := *identity
	stored.Email = email
	s.identities[stored.UID] = stored
	s.byEmail[email] = stored.UID
	return nil
}

// GetByID retrieves an identity by UID
func (s *MemoryStore) GetByID(_ context.Context, uid string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &identity, nil
}

// GetByEmail retrieves an identity by email
func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	identity := s.identities[uid]
	return &identity, nil
}

// UpdateDisplayName sets the display name of an identity
func (s *MemoryStore) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[uid]
	if !ok {
		return ErrNotFound
	}
	identity.DisplayName = displayName
	s.identities[uid] = identity
	return nil
}

// GetDocument returns a copy of the stored document
func (s *MemoryStore) GetDocument(_ context.Context, collection, id string) (baas.Document, bool, error) {
	s.mu.RLock()
	stored, ok := s.documents[documentKey(collection, id)]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	doc := baas.Document{}
	if err := json.Unmarshal(stored.raw, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	doc[baas.RevisionField] = stored.revision
	return doc, true, nil
}

// SetDocument writes a document, merging top-level fields when requested
func (s *MemoryStore) SetDocument(_ context.Context, collection, id string, data baas.Document, opts baas.SetOptions) error {
	key := documentKey(collection, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.documents[key]
	if opts.ExpectedRevision != nil && stored.revision != *opts.ExpectedRevision {
		return baas.ErrRevisionConflict
	}

	next := baas.Document{}
	if opts.Merge && exists {
		if err := json.Unmarshal(stored.raw, &next); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
	}
	for k, v := range data {
		if k != baas.RevisionField {
			next[k] = v
		}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	s.documents[key] = memoryDocument{raw: raw, revision: stored.revision + 1}
	return nil
}

func documentKey(collection, id string) string {
	return collection + "/" + id
}
