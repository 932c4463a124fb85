package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DiskStore stores uploads on the local filesystem. Each blob is stored
// as <id> next to an <id>.meta JSON sidecar.
type DiskStore struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore.
//
// Parameters:
//   - dir: Directory to store staged files
//   - maxSize: Maximum file size in bytes (0 = no limit)
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, maxSize: maxSize, now: time.Now}, nil
}

// Dir returns the storage directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save stores the uploaded file and returns a temp ID.
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tempID := newTempID()
	path := s.blobPath(tempID)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	reader := r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && written > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	meta := &diskMeta{
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   s.now(),
	}
	if err := s.saveMeta(tempID, meta); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("upload: write metadata: %w", err)
	}

	return tempID, nil
}

// Open returns the staged file without removing it.
func (s *DiskStore) Open(ctx context.Context, tempID string) (*File, error) {
	return s.open(ctx, tempID, false)
}

// Claim returns the staged file. Closing it deletes the blob and its
// metadata.
func (s *DiskStore) Claim(ctx context.Context, tempID string) (*File, error) {
	return s.open(ctx, tempID, true)
}

func (s *DiskStore) open(ctx context.Context, tempID string, consume bool) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validTempID(tempID) {
		return nil, ErrNotFound
	}

	meta, err := s.loadMeta(tempID)
	if err != nil {
		return nil, ErrNotFound
	}

	path := s.blobPath(tempID)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rc io.ReadCloser = f
	if consume {
		rc = &deleteOnCloseReader{File: f, path: path, metaPath: s.metaPath(tempID)}
	}
	return &File{
		ID:          tempID,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		CreatedAt:   meta.CreatedAt,
		Reader:      rc,
	}, nil
}

// Cleanup removes staged files older than maxAge, including blobs whose
// metadata is missing. Files not named like a temp ID are left alone.
func (s *DiskStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !validTempID(entry.Name()) {
			continue
		}

		id := entry.Name()
		created, ok := s.createdAt(id, entry)
		if !ok || !created.Before(cutoff) {
			continue
		}
		if err := os.Remove(s.blobPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		os.Remove(s.metaPath(id))
		removed++
	}

	return removed, nil
}

// createdAt prefers the recorded staging time and falls back to the
// blob's modification time.
func (s *DiskStore) createdAt(id string, entry fs.DirEntry) (time.Time, bool) {
	if meta, err := s.loadMeta(id); err == nil {
		return meta.CreatedAt, true
	}
	info, err := entry.Info()
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s *DiskStore) blobPath(tempID string) string {
	return filepath.Join(s.dir, tempID)
}

func (s *DiskStore) metaPath(tempID string) string {
	return filepath.Join(s.dir, tempID+".meta")
}

func (s *DiskStore) saveMeta(tempID string, meta *diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(tempID), data, 0o644)
}

func (s *DiskStore) loadMeta(tempID string) (*diskMeta, error) {
	data, err := os.ReadFile(s.metaPath(tempID))
	if err != nil {
		return nil, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// deleteOnCloseReader wraps a file and deletes it when closed.
type deleteOnCloseReader struct {
	*os.File
	path     string
	metaPath string
}

func (r *deleteOnCloseReader) Close() error {
	err := r.File.Close()
	os.Remove(r.path)
	os.Remove(r.metaPath)
	return err
}
