package storage

import (
	"errors"
	"io"
)

// ErrPhotoNotFound is returned by Retrieve when no photo is stored for a pet.
var ErrPhotoNotFound = errors.New("photo not found")

// Storage keeps the original photo uploaded for each pet.
type Storage interface {
	// Store writes the photo and returns the number of bytes written.
	// An existing photo for the same pet is replaced.
	Store(ownerID, petID string, data io.Reader) (int64, error)

	// Retrieve returns a ReadCloser for the stored photo.
	Retrieve(ownerID, petID string) (io.ReadCloser, error)

	// Delete removes the stored photo. Deleting a missing photo is not an error.
	Delete(ownerID, petID string) error

	// Exists reports whether a photo is stored for the pet.
	Exists(ownerID, petID string) (bool, error)
}
