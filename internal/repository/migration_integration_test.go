//go:build integration

package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commonsroom/commonsroom/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	// Verify all expected tables exist
	tables := []string{
		"profiles",
		"projects",
		"polls",
		"poll_options",
		"poll_votes",
		"feedback",
	}

	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_PollTablesSchema(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	pollCols := []string{"id", "question", "is_active", "created_by", "created_at"}
	for _, col := range pollCols {
		exists, err := columnExists(ctx, pool, "polls", col)
		if err != nil {
			t.Fatalf("columnExists failed: %v", err)
		}
		if !exists {
			t.Errorf("Column %q should exist in polls table", col)
		}
	}

	voteCols := []string{"id", "poll_id", "option_id", "user_id", "created_at"}
	for _, col := range voteCols {
		exists, err := columnExists(ctx, pool, "poll_votes", col)
		if err != nil {
			t.Fatalf("columnExists failed: %v", err)
		}
		if !exists {
			t.Errorf("Column %q should exist in poll_votes table", col)
		}
	}
}

func TestIntegrationMigration_VoteUniqueness(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	seed := `
		INSERT INTO polls (id, question, created_by) VALUES ('p1', 'Ship it?', 'admin');
		INSERT INTO poll_options (id, poll_id, option_text) VALUES ('o1', 'p1', 'Yes'), ('o2', 'p1', 'No');
		INSERT INTO poll_votes (id, poll_id, option_id, user_id) VALUES ('v1', 'p1', 'o1', 'u1');
	`
	if _, err := pool.Exec(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Second vote by the same user on the same poll must violate the
	// unique index, even with a different option.
	_, err := pool.Exec(ctx, `
		INSERT INTO poll_votes (id, poll_id, option_id, user_id)
		VALUES ('v2', 'p1', 'o2', 'u1')
	`)
	if err == nil {
		t.Error("Expected unique violation for duplicate (poll_id, user_id)")
	}

	// A different user is fine.
	if _, err := pool.Exec(ctx, `
		INSERT INTO poll_votes (id, poll_id, option_id, user_id)
		VALUES ('v3', 'p1', 'o2', 'u2')
	`); err != nil {
		t.Errorf("vote by different user failed: %v", err)
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	// Verify role check constraint
	_, err := pool.Exec(ctx, `
		INSERT INTO profiles (id, email, role)
		VALUES ('u1', 'u1@example.com', 'superuser')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for invalid role")
	}

	// Verify project status check constraint
	_, err = pool.Exec(ctx, `
		INSERT INTO projects (id, title, description, status)
		VALUES ('pr1', 'Title', 'Desc', 'shipped')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for invalid status")
	}

	// Verify feedback rating check constraint
	if _, err := pool.Exec(ctx, `
		INSERT INTO projects (id, title, description, status)
		VALUES ('pr1', 'Title', 'Desc', 'beta')
	`); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO feedback (id, project_id, user_id, rating, category, message)
		VALUES ('f1', 'pr1', 'u1', 9, 'bug', 'broken')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for rating > 5")
	}

	// Verify vote option FK
	_, err = pool.Exec(ctx, `
		INSERT INTO poll_votes (id, poll_id, option_id, user_id)
		VALUES ('v1', 'missing-poll', 'missing-option', 'u1')
	`)
	if err == nil {
		t.Error("Expected foreign key violation for unknown poll")
	}
}

func TestIntegrationMigration_RollbackPolls(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	// Apply down migration
	downPath := filepath.Join(root, "migrations", "000003_polls.down.sql")
	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}

	// Verify tables don't exist
	for _, table := range []string{"polls", "poll_options", "poll_votes"} {
		exists, err := tableExists(ctx, pool, table)
		if err != nil {
			t.Fatalf("tableExists failed: %v", err)
		}
		if exists {
			t.Errorf("%s table should not exist after rollback", table)
		}
	}

	// Re-apply up migration for cleanup
	upPath := filepath.Join(root, "migrations", "000003_polls.up.sql")
	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		t.Fatalf("reapply up migration: %v", err)
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	applyAllMigrations(ctx, t, pool)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	// Apply up migrations again (should be idempotent via IF NOT EXISTS)
	for _, name := range []string{"000001_profiles", "000002_projects", "000003_polls", "000004_feedback"} {
		upPath := filepath.Join(root, "migrations", name+".up.sql")
		upSQL, err := os.ReadFile(upPath)
		if err != nil {
			t.Fatalf("read %s up migration: %v", name, err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			t.Fatalf("second apply of %s should not fail: %v", name, err)
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func applyAllMigrations(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	// Feedback references projects, so reset order matters.
	if err := testutil.ResetFeedbackSchema(ctx, pool); err != nil {
		// Feedback may not exist yet on a fresh database; reset after deps.
		t.Logf("initial feedback reset: %v", err)
	}
	if err := testutil.ResetProfilesSchema(ctx, pool); err != nil {
		t.Fatalf("reset profiles: %v", err)
	}
	if err := testutil.ResetProjectsSchema(ctx, pool); err != nil {
		t.Fatalf("reset projects: %v", err)
	}
	if err := testutil.ResetPollsSchema(ctx, pool); err != nil {
		t.Fatalf("reset polls: %v", err)
	}
	if err := testutil.ResetFeedbackSchema(ctx, pool); err != nil {
		t.Fatalf("reset feedback: %v", err)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	return ctx, pool
}
