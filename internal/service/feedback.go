package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commonsroom/commonsroom/internal/metrics"
	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/repository"
)

// Feedback service errors.
var (
	ErrFeedbackNotFound       = errors.New("feedback not found")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrInvalidCategory        = errors.New("invalid feedback category")
	ErrMessageRequired        = errors.New("feedback message is required")
	ErrReplyRequired          = errors.New("reply text is required")
	ErrFeedbackProjectMissing = errors.New("feedback references unknown project")
)

// FeedbackStore is the storage capability the feedback service depends on.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, fb *model.Feedback) error
	ListFeedback(ctx context.Context) ([]*model.Feedback, error)
	ListFeedbackByUser(ctx context.Context, userID string) ([]*model.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
	ReplyToFeedback(ctx context.Context, id, reply string, repliedAt time.Time) error
}

// FeedbackService handles feedback submission and admin responses.
type FeedbackService struct {
	store   FeedbackStore
	metrics metrics.Recorder
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(store FeedbackStore, recorder metrics.Recorder) *FeedbackService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &FeedbackService{
		store:   store,
		metrics: recorder,
	}
}

// SubmitFeedbackInput defines input for submitting feedback.
type SubmitFeedbackInput struct {
	ProjectID string
	UserID    string
	Rating    int
	Category  string
	Message   string
}

// SubmitFeedback records a member's feedback for a project.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, input SubmitFeedbackInput) (*model.Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if !model.FeedbackCategory(input.Category).IsValid() {
		return nil, ErrInvalidCategory
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, ErrMessageRequired
	}

	fb := &model.Feedback{
		ID:        newID(),
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Category:  model.FeedbackCategory(input.Category),
		Message:   strings.TrimSpace(input.Message),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrFeedbackProjectMissing
		}
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	s.metrics.IncFeedbackSubmitted()

	return fb, nil
}

// ListAllFeedback retrieves all feedback for the admin view.
func (s *FeedbackService) ListAllFeedback(ctx context.Context) ([]*model.Feedback, error) {
	entries, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}

// ListMyFeedback retrieves one member's own feedback.
func (s *FeedbackService) ListMyFeedback(ctx context.Context, userID string) ([]*model.Feedback, error) {
	entries, err := s.store.ListFeedbackByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}

// DeleteFeedback removes a feedback entry.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, id string) error {
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

// ReplyToFeedback stores an admin reply on a feedback entry.
func (s *FeedbackService) ReplyToFeedback(ctx context.Context, id, reply string) error {
	if strings.TrimSpace(reply) == "" {
		return ErrReplyRequired
	}

	if err := s.store.ReplyToFeedback(ctx, id, strings.TrimSpace(reply), time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("failed to reply to feedback: %w", err)
	}

	return nil
}
