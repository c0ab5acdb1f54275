package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the object store behind the archiver.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// MemoryUploader keeps objects in memory. FailKeys makes uploads of those keys fail.
type MemoryUploader struct {
	BaseURL  string
	FailKeys map[string]bool

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{BaseURL: baseURL, objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u.FailKeys[key] {
		return nil, fmt.Errorf("upload of %s rejected", key)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	u.mu.Lock()
	u.objects[key] = body
	u.mu.Unlock()
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return publicURL(u.BaseURL, key)
}

func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	body, ok := u.objects[key]
	return body, ok
}

func (u *MemoryUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	keys := make([]string, 0, len(u.objects))
	for k := range u.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
