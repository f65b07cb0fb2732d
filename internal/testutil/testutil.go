// Package testutil provides shared helpers for integration and unit tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/commonsroom/commonsroom/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema drops and recreates a schema by replaying its migration pair.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", name+".down.sql")
	upPath := filepath.Join(root, "migrations", name+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read %s down migration: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply %s down migration: %w", name, err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read %s up migration: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply %s up migration: %w", name, err)
	}

	return nil
}

// ResetProfilesSchema drops and recreates the profiles schema for tests.
func ResetProfilesSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_profiles")
}

// ResetProjectsSchema drops and recreates the projects schema for tests.
func ResetProjectsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_projects")
}

// ResetPollsSchema drops and recreates the polls, options, and votes
// schema for tests.
func ResetPollsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_polls")
}

// ResetFeedbackSchema drops and recreates the feedback schema for tests.
// Feedback references projects, so that schema must exist first.
func ResetFeedbackSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000004_feedback")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestProfile creates a test profile with the given role.
func NewTestProfile(t testing.TB, role string) *model.Profile {
	t.Helper()
	id := ulid.Make().String()
	return &model.Profile{
		ID:        id,
		Email:     fmt.Sprintf("user-%s@example.com", id),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestPoll creates an active test poll with two options.
func NewTestPoll(t testing.TB, question string) (*model.Poll, []*model.PollOption) {
	t.Helper()
	poll := &model.Poll{
		ID:        ulid.Make().String(),
		Question:  question,
		IsActive:  true,
		CreatedBy: "test-admin",
		CreatedAt: time.Now().UTC(),
	}
	options := []*model.PollOption{
		{ID: ulid.Make().String(), PollID: poll.ID, OptionText: "Yes"},
		{ID: ulid.Make().String(), PollID: poll.ID, OptionText: "No"},
	}
	return poll, options
}

// NewTestProject creates a test project with sensible defaults.
func NewTestProject(t testing.TB, title string) *model.Project {
	t.Helper()
	now := time.Now().UTC()
	return &model.Project{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: "A test project",
		Status:      model.ProjectStatusIdea,
		Tags:        []string{"test"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
