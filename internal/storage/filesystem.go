package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var _ Storage = (*FileSystem)(nil)

// FileSystem stores photos at <root>/<ownerID>/<petID>.photo.
type FileSystem struct {
	root string
}

// NewFileSystem creates a FileSystem rooted at root.
func NewFileSystem(root string) *FileSystem {
	return &FileSystem{root: root}
}

func (s *FileSystem) ownerDir(ownerID string) string {
	return filepath.Join(s.root, filepath.Base(ownerID))
}

func (s *FileSystem) photoPath(ownerID, petID string) string {
	return filepath.Join(s.ownerDir(ownerID), filepath.Base(petID)+".photo")
}

// Store writes via a temp file and rename so readers never see a partial photo.
func (s *FileSystem) Store(ownerID, petID string, data io.Reader) (int64, error) {
	dir := s.ownerDir(ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	dst := s.photoPath(ownerID, petID)
	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}
	tmpPath = ""

	return n, nil
}

func (s *FileSystem) Retrieve(ownerID, petID string) (io.ReadCloser, error) {
	f, err := os.Open(s.photoPath(ownerID, petID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", ownerID, petID, ErrPhotoNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening photo: %w", err)
	}
	return f, nil
}

func (s *FileSystem) Delete(ownerID, petID string) error {
	err := os.Remove(s.photoPath(ownerID, petID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing photo: %w", err)
	}
	// Drop the owner directory once its last photo is gone; fails harmlessly otherwise.
	_ = os.Remove(s.ownerDir(ownerID))
	return nil
}

func (s *FileSystem) Exists(ownerID, petID string) (bool, error) {
	_, err := os.Stat(s.photoPath(ownerID, petID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking photo: %w", err)
	}
}
