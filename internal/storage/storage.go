package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage writes uploaded image files under the media root. Stored paths are
// slash-separated and relative to the root, so they can be appended to the
// media base URL directly.
type Storage struct {
	root string
}

func New(root string) *Storage {
	return &Storage{root: root}
}

// SaveImage stores an uploaded image under properties/ with a random
// filename, keeping the original extension. Returns the relative path.
func (s *Storage) SaveImage(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}

	relPath := path.Join("properties", uuid.New().String()+ext)
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return relPath, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Storage) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Root returns the media root directory.
func (s *Storage) Root() string {
	return s.root
}
