package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/commonsroom/commonsroom/internal/handler/dto"
	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/service"
)

// FeedbackHandler handles HTTP requests for feedback operations.
type FeedbackHandler struct {
	svc    *service.FeedbackService
	logger *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(svc *service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		svc:    svc,
		logger: logger,
	}
}

// Submit handles POST /api/v1/feedback.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	userID := identity.UserIDFromContext(r.Context())

	fb, err := h.svc.SubmitFeedback(r.Context(), service.SubmitFeedbackInput{
		ProjectID: req.ProjectID,
		UserID:    userID,
		Rating:    req.Rating,
		Category:  req.Category,
		Message:   req.Message,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("feedback_submitted",
		"feedback_id", fb.ID,
		"project_id", fb.ProjectID,
		"category", fb.Category,
	)

	writeJSON(w, http.StatusCreated, fb)
}

// ListMine handles GET /api/v1/feedback/me.
func (h *FeedbackHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	entries, err := h.svc.ListMyFeedback(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleServiceError maps feedback service errors to HTTP responses.
func (h *FeedbackHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Rating must be between 1 and 5")
	case errors.Is(err, service.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid feedback category")
	case errors.Is(err, service.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Message is required")
	case errors.Is(err, service.ErrFeedbackProjectMissing):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Unknown project ID")
	case errors.Is(err, service.ErrFeedbackNotFound):
		writeError(w, http.StatusNotFound, "FEEDBACK_NOT_FOUND", "Feedback not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
