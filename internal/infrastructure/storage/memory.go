package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/locaflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MemoryObjectStorage keeps objects in process memory. It backs development
// setups without an S3 endpoint and tests
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]Object)}
}

func (m *MemoryObjectStorage) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemoryObjectStorage) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &obj, nil
}

func (m *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// DownloadURL always returns ""; callers stream the object instead
func (m *MemoryObjectStorage) DownloadURL(context.Context, string) (string, error) {
	return "", nil
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// New returns S3 storage when enabled, otherwise in-memory storage
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if !cfg.Enabled {
		logger.Warn("Object storage disabled, documents are kept in memory")
		return NewMemoryObjectStorage(), nil
	}
	s3, err := NewS3ObjectStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil
}
