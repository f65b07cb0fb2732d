package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/commonsroom/commonsroom/internal/model"
)

// ErrFeedbackNotFound indicates the feedback entry does not exist.
var ErrFeedbackNotFound = errors.New("feedback not found")

// CreateFeedback inserts a new feedback entry.
func (r *Repository) CreateFeedback(ctx context.Context, fb *model.Feedback) error {
	query := `
		INSERT INTO feedback (id, project_id, user_id, rating, category, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		fb.ID,
		fb.ProjectID,
		fb.UserID,
		fb.Rating,
		fb.Category,
		fb.Message,
		fb.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

// ListFeedback retrieves all feedback, newest first, with the submitter's
// email joined in for the admin view.
func (r *Repository) ListFeedback(ctx context.Context) ([]*model.Feedback, error) {
	query := `
		SELECT f.id, f.project_id, f.user_id, COALESCE(p.email, ''), f.rating, f.category, f.message,
		       COALESCE(f.admin_reply, ''), f.replied_at, f.created_at
		FROM feedback f
		LEFT JOIN profiles p ON p.id = f.user_id
		ORDER BY f.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows, true)
}

// ListFeedbackByUser retrieves one member's feedback, newest first.
func (r *Repository) ListFeedbackByUser(ctx context.Context, userID string) ([]*model.Feedback, error) {
	query := `
		SELECT id, project_id, user_id, rating, category, message,
		       COALESCE(admin_reply, ''), replied_at, created_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows, false)
}

// DeleteFeedback removes a feedback entry.
func (r *Repository) DeleteFeedback(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}

	return nil
}

// ReplyToFeedback stores an admin reply on a feedback entry.
func (r *Repository) ReplyToFeedback(ctx context.Context, id, reply string, repliedAt time.Time) error {
	query := `
		UPDATE feedback
		SET admin_reply = $2, replied_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, reply, repliedAt)
	if err != nil {
		return fmt.Errorf("failed to reply to feedback: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}

	return nil
}

// CountFeedback returns the total number of feedback entries.
func (r *Repository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// collectFeedback scans feedback rows. withEmail indicates the query joined
// the submitter's email as an extra column.
func collectFeedback(rows pgx.Rows, withEmail bool) ([]*model.Feedback, error) {
	var entries []*model.Feedback
	for rows.Next() {
		var fb model.Feedback
		var err error
		if withEmail {
			err = rows.Scan(&fb.ID, &fb.ProjectID, &fb.UserID, &fb.UserEmail, &fb.Rating,
				&fb.Category, &fb.Message, &fb.AdminReply, &fb.RepliedAt, &fb.CreatedAt)
		} else {
			err = rows.Scan(&fb.ID, &fb.ProjectID, &fb.UserID, &fb.Rating,
				&fb.Category, &fb.Message, &fb.AdminReply, &fb.RepliedAt, &fb.CreatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, &fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return entries, nil
}
