package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/repository"
)

// Project service errors.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrTitleRequired        = errors.New("project title is required")
	ErrDescriptionRequired  = errors.New("project description is required")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrInvalidLink          = errors.New("invalid link URL")
)

// ProjectStore is the storage capability the project service depends on.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// ProjectService handles project catalog business logic.
type ProjectService struct {
	store ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

// ProjectInput defines input for creating or updating a project.
type ProjectInput struct {
	Title       string
	Description string
	Status      string
	GithubLink  string
	DemoLink    string
	ImageURL    string
	Tags        []string
	Version     string
}

// validate checks a ProjectInput against the catalog rules.
func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrDescriptionRequired
	}
	if !model.ProjectStatus(in.Status).IsValid() {
		return ErrInvalidProjectStatus
	}
	for _, link := range []string{in.GithubLink, in.DemoLink, in.ImageURL} {
		if link == "" {
			continue
		}
		parsed, err := url.Parse(link)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return ErrInvalidLink
		}
	}
	return nil
}

// CreateProject creates a new project.
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput) (*model.Project, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := &model.Project{
		ID:          newID(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      model.ProjectStatus(input.Status),
		GithubLink:  input.GithubLink,
		DemoLink:    input.DemoLink,
		ImageURL:    input.ImageURL,
		Tags:        input.Tags,
		Version:     input.Version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects retrieves all projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject replaces a project's mutable fields.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input ProjectInput) (*model.Project, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Status = model.ProjectStatus(input.Status)
	existing.GithubLink = input.GithubLink
	existing.DemoLink = input.DemoLink
	existing.ImageURL = input.ImageURL
	existing.Tags = input.Tags
	existing.Version = input.Version
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateProject(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return existing, nil
}

// DeleteProject removes a project.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
