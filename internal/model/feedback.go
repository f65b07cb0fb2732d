package model

import (
	"slices"
	"time"
)

// FeedbackCategory classifies a feedback submission.
type FeedbackCategory string

const (
	FeedbackCategoryBug     FeedbackCategory = "bug"
	FeedbackCategoryUX      FeedbackCategory = "ux"
	FeedbackCategoryFeature FeedbackCategory = "feature"
	FeedbackCategoryGeneral FeedbackCategory = "general"
)

// ValidFeedbackCategories contains all accepted categories.
var ValidFeedbackCategories = []FeedbackCategory{
	FeedbackCategoryBug,
	FeedbackCategoryUX,
	FeedbackCategoryFeature,
	FeedbackCategoryGeneral,
}

// IsValid checks if the category is one of the accepted values.
func (c FeedbackCategory) IsValid() bool {
	return slices.Contains(ValidFeedbackCategories, c)
}

// Feedback is a member's rating and message for a project, optionally answered
// by an admin reply.
type Feedback struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"project_id"`
	UserID     string           `json:"user_id"`
	UserEmail  string           `json:"user_email,omitempty"`
	Rating     int              `json:"rating"`
	Category   FeedbackCategory `json:"category"`
	Message    string           `json:"message"`
	AdminReply string           `json:"admin_reply,omitempty"`
	RepliedAt  *time.Time       `json:"replied_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
