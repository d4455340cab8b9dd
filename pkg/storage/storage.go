package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no object exists under the given key
	ErrNotFound = errors.New("stored object not found")
	// ErrInvalidKey indicates a key that would escape the storage root
	ErrInvalidKey = errors.New("invalid storage key")
)

// StoredObject describes a blob after a successful save.
type StoredObject struct {
	Key  string
	URL  string
	Size int64
}

// BlobStore is the port the ingestion pipeline uses for attachment bytes.
// The production deployment may back this with an object store; the local
// disk implementation below is sufficient for self-hosted installs.
type BlobStore interface {
	Save(data []byte, pathPrefix, filename string) (*StoredObject, error)
	ResolveURL(key string) string
	Copy(key, pathPrefix string) (*StoredObject, error)
}

// DiskStore stores blobs under a root directory, one directory per path prefix.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes data under a generated key and returns the stored object.
// Keys look like "<prefix>/<uuid>_<filename>" so duplicate filenames never collide.
func (s *DiskStore) Save(data []byte, pathPrefix, filename string) (*StoredObject, error) {
	key := filepath.ToSlash(filepath.Join(pathPrefix, uuid.New().String()+"_"+sanitizeFilename(filename)))
	full, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create prefix dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}

	return &StoredObject{Key: key, URL: s.ResolveURL(key), Size: int64(len(data))}, nil
}

// ResolveURL maps a key to its public URL.
func (s *DiskStore) ResolveURL(key string) string {
	return s.baseURL + "/" + key
}

// Copy duplicates an existing blob under a new prefix, leaving the original in place.
func (s *DiskStore) Copy(key, pathPrefix string) (*StoredObject, error) {
	full, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	// Preserve the original filename portion of the key
	base := filepath.Base(key)
	if idx := strings.Index(base, "_"); idx >= 0 && idx < len(base)-1 {
		base = base[idx+1:]
	}
	return s.Save(data, pathPrefix, base)
}

func (s *DiskStore) fullPath(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = "attachment"
	}
	return name
}
