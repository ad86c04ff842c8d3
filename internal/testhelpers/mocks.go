package testhelpers

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cookbook/backend/internal/models"
)

// MockMailer is a mock implementation of service.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(user *models.User, resetURL string) error {
	args := m.Called(user, resetURL)
	return args.Error(0)
}

// MemoryImageStore keeps objects in a map and can be told to fail.
type MemoryImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	// FailPut makes Put fail for keys it returns true for.
	FailPut func(key string) bool
	Deleted []string
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Objects: map[string][]byte{}}
}

func (s *MemoryImageStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil && s.FailPut(key) {
		return "", ErrStoreUnavailable
	}
	s.Objects[key] = data
	return "https://images.test/" + key, nil
}

func (s *MemoryImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

func (s *MemoryImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

type storeError string

func (e storeError) Error() string { return string(e) }

// ErrStoreUnavailable is returned by MemoryImageStore when FailPut matches.
const ErrStoreUnavailable = storeError("object store unavailable")
