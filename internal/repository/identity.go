package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-discovery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an identity with the email exists
	ErrDuplicateEmail = errors.New("email already registered")
)

const uniqueViolation = "23505"

// IdentityRepository handles database operations for auth identities
type IdentityRepository struct {
	db *pgxpool.Pool
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create creates a new identity
func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (uid, email, password_hash, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		identity.UID, normalizeEmail(identity.Email), identity.PasswordHash, identity.DisplayName, identity.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create identity: %w", classify(err))
	}
	return nil
}

// GetByID retrieves an identity by UID
func (r *IdentityRepository) GetByID(ctx context.Context, uid string) (*models.Identity, error) {
	query := `
		SELECT uid, email, password_hash, display_name, created_at
		FROM identities
		WHERE uid = $1
	`
	return r.scanOne(ctx, query, uid)
}

// GetByEmail retrieves an identity by email
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `
		SELECT uid, email, password_hash, display_name, created_at
		FROM identities
		WHERE email = $1
	`
	return r.scanOne(ctx, query, normalizeEmail(email))
}

// UpdateDisplayName sets the display name of an identity
func (r *IdentityRepository) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	query := `UPDATE identities SET display_name = $1 WHERE uid = $2`
	result, err := r.db.Exec(ctx, query, displayName, uid)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) scanOne(ctx context.Context, query string, arg string) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&identity.UID, &identity.Email, &identity.PasswordHash, &identity.DisplayName, &identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", classify(err))
	}
	return &identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
