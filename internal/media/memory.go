package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrObjectNotFound is returned when deleting an unknown key
var ErrObjectNotFound = errors.New("media object not found")

// MemoryStore keeps objects in process memory. It backs tests and local runs
// without an object store.
type MemoryStore struct {
	BaseURL string
	Now     func() time.Time

	// UploadErr and DeleteErr force failures
	UploadErr error
	DeleteErr error

	mu      sync.Mutex
	objects map[string][]byte
	uploads []string
	deletes []string
}

// NewMemoryStore creates an empty store serving URLs under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		BaseURL: baseURL,
		Now:     time.Now,
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, obj Object) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if obj.Body == nil {
		return "", errors.New("empty upload body")
	}

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	id := NewIdentifier(obj.Folder, obj.Filename, m.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id.Key()] = data
	m.uploads = append(m.uploads, id.Key())

	return PublicURL(m.BaseURL, id.Key()), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, id.Key())
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[id.Key()]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, id.Key())
	return nil
}

// Get returns a stored object
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return bytes.Clone(data), ok
}

// Len is the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Uploads lists uploaded keys in order
func (m *MemoryStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// Deletes lists attempted deletions in order, failed ones included
func (m *MemoryStore) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}
