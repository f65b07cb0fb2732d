package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commonsroom/commonsroom/internal/handler/dto"
	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/service"
)

// AdminDirectory defines the profile listing and counting operations the
// admin dashboard needs.
type AdminDirectory interface {
	ListProfiles(ctx context.Context) ([]*model.Profile, error)
	CountProfiles(ctx context.Context) (int64, error)
	CountProjects(ctx context.Context) (int64, error)
	CountFeedback(ctx context.Context) (int64, error)
}

// AdminHandler provides admin-only dashboard and moderation endpoints.
type AdminHandler struct {
	directory AdminDirectory
	feedback  *service.FeedbackService
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(directory AdminDirectory, feedback *service.FeedbackService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		directory: directory,
		feedback:  feedback,
		logger:    logger,
	}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.CountProfiles(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	projects, err := h.directory.CountProjects(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	feedback, err := h.directory.CountFeedback(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsResponse{
		TotalUsers:    users,
		TotalProjects: projects,
		TotalFeedback: feedback,
	})
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.directory.ListProfiles(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// ListFeedback handles GET /api/v1/admin/feedback.
func (h *AdminHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feedback.ListAllFeedback(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// DeleteFeedback handles DELETE /api/v1/admin/feedback/{id}.
func (h *AdminHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Feedback ID is required")
		return
	}

	if err := h.feedback.DeleteFeedback(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			writeError(w, http.StatusNotFound, "FEEDBACK_NOT_FOUND", "Feedback not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.logger.Info("feedback_deleted", "feedback_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// ReplyFeedback handles PUT /api/v1/admin/feedback/{id}/reply.
func (h *AdminHandler) ReplyFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Feedback ID is required")
		return
	}

	var req dto.ReplyFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.feedback.ReplyToFeedback(r.Context(), id, req.Reply); err != nil {
		switch {
		case errors.Is(err, service.ErrReplyRequired):
			writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Reply text is required")
		case errors.Is(err, service.ErrFeedbackNotFound):
			writeError(w, http.StatusNotFound, "FEEDBACK_NOT_FOUND", "Feedback not found")
		default:
			h.internalError(w, err)
		}
		return
	}

	h.logger.Info("feedback_replied", "feedback_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// internalError logs and writes a 500 response.
func (h *AdminHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("internal_error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
