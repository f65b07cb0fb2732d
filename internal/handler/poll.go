package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commonsroom/commonsroom/internal/handler/dto"
	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/service"
)

// PollHandler handles HTTP requests for poll operations.
type PollHandler struct {
	svc    *service.PollService
	logger *slog.Logger
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(svc *service.PollService, logger *slog.Logger) *PollHandler {
	return &PollHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/polls.
// Returns all active polls with their current tallies.
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.svc.ListPolls(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, polls)
}

// Get handles GET /api/v1/polls/{id}.
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Poll ID is required")
		return
	}

	poll, err := h.svc.GetPoll(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// Create handles POST /api/v1/polls. Admin only.
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreatePollInput{
		Question:  req.Question,
		Options:   req.Options,
		CreatedBy: identity.UserIDFromContext(r.Context()),
	}

	poll, err := h.svc.CreatePoll(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("poll_created",
		"poll_id", poll.ID,
		"created_by", poll.CreatedBy,
		"option_count", len(req.Options),
	)

	writeJSON(w, http.StatusCreated, poll)
}

// Vote handles POST /api/v1/polls/{id}/vote.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	if pollID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Poll ID is required")
		return
	}

	var req dto.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.OptionID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_OPTION", "Option ID is required")
		return
	}

	userID := identity.UserIDFromContext(r.Context())

	vote, err := h.svc.CastVote(r.Context(), pollID, userID, req.OptionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("vote_cast",
		"poll_id", pollID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.VoteResponse{
		Message: "Vote recorded",
		VoteID:  vote.ID,
	})
}

// Retire handles POST /api/v1/polls/{id}/retire. Admin only.
func (h *PollHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Poll ID is required")
		return
	}

	if err := h.svc.RetirePoll(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("poll_retired", "poll_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps poll service errors to HTTP responses.
func (h *PollHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPollNotFound):
		writeError(w, http.StatusNotFound, "POLL_NOT_FOUND", "Poll not found")
	case errors.Is(err, service.ErrPollNotActive):
		writeError(w, http.StatusBadRequest, "POLL_NOT_ACTIVE", "Poll is no longer accepting votes")
	case errors.Is(err, service.ErrAlreadyVoted):
		writeError(w, http.StatusBadRequest, "ALREADY_VOTED", "You have already voted on this poll")
	case errors.Is(err, service.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, "INVALID_OPTION", "Option does not belong to this poll")
	case errors.Is(err, service.ErrQuestionRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Poll question is required")
	case errors.Is(err, service.ErrTooFewOptions):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "At least 2 options are required")
	case errors.Is(err, service.ErrOptionTextRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Option text is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
