package database

import (
	"errors"

	"github.com/leca/dt-petfriends/internal/model"
)

// ErrNotFound is returned when a lookup or mutation matches no row.
var ErrNotFound = errors.New("not found")

// Database defines the persistence interface for all domain objects.
type Database interface {
	// Users
	CreateUser(u *model.User) error
	GetUserByEmail(email string) (*model.User, error)

	// API keys
	CreateAPIKey(k *model.APIKey) error
	GetAPIKeyForUser(userID string) (*model.APIKey, error)
	GetUserByAPIKey(key string) (*model.User, error)

	// Pets
	CreatePet(p *model.Pet) error
	GetPet(petID string) (*model.Pet, error)
	// ListPets returns pets newest first. An empty userID lists every pet.
	ListPets(userID string) ([]*model.Pet, error)
	UpdatePet(p *model.Pet) error
	DeletePet(userID, petID string) error
	CountPets(userID string) (int, error)

	Close() error
}
