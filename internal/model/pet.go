package model

import (
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DefaultMaxAge is the oldest age the twin accepts when none is configured.
const DefaultMaxAge = 100

// User is a PetFriends account.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
}

// APIKey is the opaque auth key issued to a user by GET /api/key.
type APIKey struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}

// Pet is a PetFriends pet record as returned on the wire.
// Age is a string because the real service stores it as one.
type Pet struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	AnimalType string    `json:"animal_type"`
	Age        string    `json:"age"`
	PetPhoto   string    `json:"pet_photo"`
	CreatedAt  time.Time `json:"created_at"`
}

// PetFields is the user-supplied part of a pet, shared by create and update.
type PetFields struct {
	Name       string
	AnimalType string
	Age        string
}

// Normalize trims surrounding whitespace from every field and rewrites a
// parseable age in canonical decimal form, so "+2" and "02" store as "2".
func (f PetFields) Normalize() PetFields {
	age := strings.TrimSpace(f.Age)
	if n, err := strconv.Atoi(age); err == nil {
		age = strconv.Itoa(n)
	}
	return PetFields{
		Name:       strings.TrimSpace(f.Name),
		AnimalType: strings.TrimSpace(f.AnimalType),
		Age:        age,
	}
}

// Validate checks the fields the way the live service does: name and
// animal_type are required and age must be an integer in [0, maxAge].
func (f PetFields) Validate(maxAge int) error {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.AnimalType, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.Age, validation.Required, is.Int, validation.By(ageInRange(maxAge))),
	)
}

// SameAs reports whether f would leave p unchanged. Ages compare by value.
func (f PetFields) SameAs(p *Pet) bool {
	return f.Name == p.Name && f.AnimalType == p.AnimalType && sameAge(f.Age, p.Age)
}

func sameAge(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return x == y
}

func ageInRange(maxAge int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		n, err := strconv.Atoi(s)
		if err != nil {
			// is.Int only matches the digit pattern; out-of-range values land here.
			return validation.NewError("validation_age_range", "must be between 0 and "+strconv.Itoa(maxAge))
		}
		if n < 0 || n > maxAge {
			return validation.NewError("validation_age_range", "must be between 0 and "+strconv.Itoa(maxAge))
		}
		return nil
	}
}
