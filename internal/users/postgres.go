package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/Coddedx/MoviePx-API/internal/db"
)

// PostgresStore is the canonical identity store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `u.id, u.email, u.email_verified, u.roles, u.status, u.created_at`

func scanUser(row *sql.Row) (*User, error) {
	var (
		u  User
		id uuid.UUID
	)
	err := row.Scan(&id, &u.Email, &u.EmailVerified, pq.Array(&u.Roles), &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = id.String()
	return &u, nil
}

func (s *PostgresStore) FindByProviderSubject(ctx context.Context, provider, subject string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN identities i ON i.user_id = u.id
		WHERE i.provider = $1
		  AND i.provider_user_id = $2
	`, provider, subject)

	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE LOWER(u.email) = LOWER($1)
	`, email)

	return scanUser(row)
}

func (s *PostgresStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	roles := nu.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}

	// An email that already carries credentials cannot register again.
	if nu.Password != "" {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1
				FROM credentials c
				JOIN users u ON u.id = c.user_id
				WHERE LOWER(u.email) = LOWER($1)
			)
		`, nu.Email).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAlreadyRegistered
		}
	}

	var (
		u  User
		id uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified, roles)
		VALUES ($1, $2, $3)
		RETURNING id, email, email_verified, roles, status, created_at
	`, nu.Email, nu.EmailVerified, pq.Array(roles)).
		Scan(&id, &u.Email, &u.EmailVerified, pq.Array(&u.Roles), &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.ID = id.String()

	if nu.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO credentials (user_id, password_hash)
			VALUES ($1, $2)
		`, u.ID, string(hash))
		if err != nil {
			return nil, err
		}
	}

	return &u, nil
}

func (s *PostgresStore) LinkProviderIdentity(ctx context.Context, userID, provider, subject string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`, userID, provider, subject)
	return err
}

func (s *PostgresStore) ValidatePassword(ctx context.Context, userID, plaintext string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		// Provider-linked accounts have no password to validate.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil, nil
}
