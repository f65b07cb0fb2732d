package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/commonsroom/commonsroom/internal/model"
)

// ErrProjectNotFound indicates the project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// CreateProject inserts a new project.
func (r *Repository) CreateProject(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (id, title, description, status, github_link, demo_link, image_url, tags, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Status,
		project.GithubLink,
		project.DemoLink,
		project.ImageURL,
		pq.Array(project.Tags),
		project.Version,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProjectByID retrieves a project by its ID.
func (r *Repository) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
		SELECT id, title, description, status, github_link, demo_link, image_url, tags, version, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListProjects retrieves all projects, newest first.
func (r *Repository) ListProjects(ctx context.Context) ([]*model.Project, error) {
	query := `
		SELECT id, title, description, status, github_link, demo_link, image_url, tags, version, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// UpdateProject updates a project's mutable fields.
func (r *Repository) UpdateProject(ctx context.Context, project *model.Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, status = $4, github_link = $5, demo_link = $6, image_url = $7, tags = $8, version = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Status,
		project.GithubLink,
		project.DemoLink,
		project.ImageURL,
		pq.Array(project.Tags),
		project.Version,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// DeleteProject removes a project.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// CountProjects returns the total number of projects.
func (r *Repository) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// scanProject scans a single row into a Project model.
func scanProject(row pgx.Row) (*model.Project, error) {
	var project model.Project
	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Status,
		&project.GithubLink,
		&project.DemoLink,
		&project.ImageURL,
		pq.Array(&project.Tags),
		&project.Version,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	return &project, err
}
