package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateRecruiter inserts a recruiter. It returns ErrDuplicate when the
// email is already registered.
func (db *DB) CreateRecruiter(ctx context.Context, r *Recruiter) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Email = NormalizeEmail(r.Email)

	_, err := db.pool.Exec(ctx,
		`INSERT INTO recruiters (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Name, r.Email, r.PasswordHash, r.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("recruiter %s: %w", r.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create recruiter: %w", err)
	}
	return nil
}

// GetRecruiterByEmail returns nil, nil when no recruiter has that email.
func (db *DB) GetRecruiterByEmail(ctx context.Context, email string) (*Recruiter, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return db.getRecruiter(ctx, `WHERE email = $1`, email)
}

// GetRecruiter returns nil, nil when the ID is unknown.
func (db *DB) GetRecruiter(ctx context.Context, id uuid.UUID) (*Recruiter, error) {
	return db.getRecruiter(ctx, `WHERE id = $1`, id)
}

func (db *DB) getRecruiter(ctx context.Context, where string, arg any) (*Recruiter, error) {
	var r Recruiter
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM recruiters `+where, arg,
	).Scan(&r.ID, &r.Name, &r.Email, &r.PasswordHash, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recruiter: %w", err)
	}
	return &r, nil
}
