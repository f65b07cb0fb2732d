package model

import (
	"slices"
	"time"
)

// ProjectStatus represents the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectStatusIdea       ProjectStatus = "idea"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusBeta       ProjectStatus = "beta"
	ProjectStatusReleased   ProjectStatus = "released"
)

// ValidProjectStatuses contains all accepted project statuses.
var ValidProjectStatuses = []ProjectStatus{
	ProjectStatusIdea,
	ProjectStatusInProgress,
	ProjectStatusBeta,
	ProjectStatusReleased,
}

// IsValid checks if the status is one of the accepted values.
func (s ProjectStatus) IsValid() bool {
	return slices.Contains(ValidProjectStatuses, s)
}

// Project is a portfolio entry managed by admins and visible to members.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	GithubLink  string        `json:"github_link,omitempty"`
	DemoLink    string        `json:"demo_link,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Version     string        `json:"version,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
