package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leca/dt-petfriends/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For in-memory use pass "file:<name>?mode=memory&cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if !strings.Contains(dsn, "_pragma") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateUser(u *model.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, email, password, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.Password, formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUserByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`
		SELECT id, email, password, created_at
		FROM users WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateAPIKey(k *model.APIKey) error {
	_, err := s.db.Exec(`
		INSERT INTO api_keys (key, user_id, created_at)
		VALUES (?, ?, ?)`,
		k.Key, k.UserID, formatTime(k.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAPIKeyForUser(userID string) (*model.APIKey, error) {
	row := s.db.QueryRow(`
		SELECT key, user_id, created_at
		FROM api_keys WHERE user_id = ?`,
		userID,
	)
	k := &model.APIKey{}
	var createdStr string
	if err := row.Scan(&k.Key, &k.UserID, &createdStr); err != nil {
		return nil, wrapScanErr("get api key", err)
	}
	k.CreatedAt = parseTime(createdStr)
	return k, nil
}

func (s *SQLiteDB) GetUserByAPIKey(key string) (*model.User, error) {
	row := s.db.QueryRow(`
		SELECT u.id, u.email, u.password, u.created_at
		FROM users u
		INNER JOIN api_keys k ON k.user_id = u.id
		WHERE k.key = ?`,
		key,
	)
	return scanUser(row)
}

// ---------------------------------------------------------------------------
// Pets
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreatePet(p *model.Pet) error {
	_, err := s.db.Exec(`
		INSERT INTO pets (id, user_id, name, animal_type, age, pet_photo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.AnimalType, p.Age, p.PetPhoto, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetPet(petID string) (*model.Pet, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, animal_type, age, pet_photo, created_at
		FROM pets WHERE id = ?`,
		petID,
	)
	return scanPet(row)
}

func (s *SQLiteDB) ListPets(userID string) ([]*model.Pet, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = s.db.Query(`
			SELECT id, user_id, name, animal_type, age, pet_photo, created_at
			FROM pets
			ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = s.db.Query(`
			SELECT id, user_id, name, animal_type, age, pet_photo, created_at
			FROM pets WHERE user_id = ?
			ORDER BY created_at DESC, id DESC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	var pets []*model.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func (s *SQLiteDB) UpdatePet(p *model.Pet) error {
	res, err := s.db.Exec(`
		UPDATE pets SET name = ?, animal_type = ?, age = ?, pet_photo = ?
		WHERE id = ? AND user_id = ?`,
		p.Name, p.AnimalType, p.Age, p.PetPhoto, p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	return checkRowsAffected(res, "pet")
}

func (s *SQLiteDB) DeletePet(userID, petID string) error {
	res, err := s.db.Exec(`DELETE FROM pets WHERE id = ? AND user_id = ?`, petID, userID)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	return checkRowsAffected(res, "pet")
}

func (s *SQLiteDB) CountPets(userID string) (int, error) {
	var count int
	var err error
	if userID == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM pets`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM pets WHERE user_id = ?`, userID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count pets: %w", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scannable) (*model.User, error) {
	u := &model.User{}
	var createdStr string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &createdStr); err != nil {
		return nil, wrapScanErr("scan user", err)
	}
	u.CreatedAt = parseTime(createdStr)
	return u, nil
}

func scanPet(row scannable) (*model.Pet, error) {
	p := &model.Pet{}
	var createdStr string
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.AnimalType, &p.Age, &p.PetPhoto, &createdStr)
	if err != nil {
		return nil, wrapScanErr("scan pet", err)
	}
	p.CreatedAt = parseTime(createdStr)
	return p, nil
}

func wrapScanErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// formatTime uses a fixed-width layout so lexical order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func checkRowsAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
