package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidUpload      = errors.New("invalid file parameter")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)

// StoredFile describes a successfully persisted upload.
type StoredFile struct {
	Filename     string
	OriginalName string
	Size         int64
	Path         string
}

// LocalStore persists uploads under a root directory, namespaced by the
// caller-supplied subdirectory. Stored filenames are machine-generated;
// the original name survives only as metadata.
type LocalStore struct {
	Root              string
	MaxFileSize       int64
	AllowedExtensions []string
}

func NewLocalStore(root string, maxFileSize int64, allowedExtensions []string) *LocalStore {
	return &LocalStore{
		Root:              root,
		MaxFileSize:       maxFileSize,
		AllowedExtensions: allowedExtensions,
	}
}

// Save validates and persists one upload. Validation is fail-fast: payload
// shape, then size, then extension. On any failure nothing is written.
func (s *LocalStore) Save(file multipart.File, header *multipart.FileHeader, subdir string) (*StoredFile, error) {
	if file == nil || header == nil || header.Filename == "" {
		return nil, ErrInvalidUpload
	}

	if header.Size > s.MaxFileSize {
		return nil, fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, s.MaxFileSize/1024/1024)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: allowed types: %s", ErrFileTypeNotAllowed, strings.Join(s.AllowedExtensions, ", "))
	}

	destDir := filepath.Join(s.Root, filepath.FromSlash(subdir))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().Unix(), ext)
	finalPath := filepath.Join(destDir, filename)

	// Write through a temp file in the destination directory so a failed
	// copy never leaves a partial file at the final path.
	tmp, err := os.CreateTemp(destDir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	written, err := io.Copy(tmp, io.LimitReader(file, s.MaxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if written > s.MaxFileSize {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, s.MaxFileSize/1024/1024)
	}

	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to move uploaded file: %w", err)
	}

	return &StoredFile{
		Filename:     filename,
		OriginalName: header.Filename,
		Size:         written,
		Path:         finalPath,
	}, nil
}

// Delete removes a stored file. Used as the compensating step when the
// database insert after a successful save fails.
func (s *LocalStore) Delete(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to delete directory %s", path)
	}
	return os.Remove(path)
}

// Exists reports whether the backing file is still present on disk.
func (s *LocalStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *LocalStore) extensionAllowed(ext string) bool {
	for _, allowed := range s.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
