package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// EnsureUser creates the account if it does not exist yet and returns it.
// An existing account keeps its password.
func (h *Handler) EnsureUser(email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	u, err := h.DB.GetUserByEmail(email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u = &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.DB.CreateUser(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// authenticate returns the user for a valid email/password pair.
func (h *Handler) authenticate(email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, database.ErrNotFound
	}
	u, err := h.DB.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, database.ErrNotFound
	}
	return u, nil
}

// keyFor returns the user's auth key, issuing one on first login.
func (h *Handler) keyFor(u *model.User) (*model.APIKey, error) {
	k, err := h.DB.GetAPIKeyForUser(u.ID)
	if err == nil {
		return k, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	k = &model.APIKey{
		Key:       strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		UserID:    u.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.DB.CreateAPIKey(k); err != nil {
		// A concurrent first login may have inserted the key already.
		if existing, getErr := h.DB.GetAPIKeyForUser(u.ID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return k, nil
}
