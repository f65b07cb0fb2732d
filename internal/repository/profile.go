package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/commonsroom/commonsroom/internal/model"
)

// ErrProfileNotFound indicates no profile row exists for an identity.
// This is distinct from authentication failure: the identity is valid but has
// no role record yet.
var ErrProfileNotFound = errors.New("profile not found")

// GetProfile retrieves a profile by identity ID.
func (r *Repository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT id, email, role, created_at
		FROM profiles
		WHERE id = $1
	`

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile inserts a profile or updates its email and role in place.
// Used by the admin seed script and provisioning tooling.
func (r *Repository) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role
	`

	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.Role,
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// ListProfiles retrieves all profiles, newest first.
func (r *Repository) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	query := `
		SELECT id, email, role, created_at
		FROM profiles
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		var profile model.Profile
		if err := rows.Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// CountProfiles returns the total number of profiles.
func (r *Repository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}
