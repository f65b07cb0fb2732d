package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commonsroom/commonsroom/internal/handler/dto"
	"github.com/commonsroom/commonsroom/internal/service"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	svc    *service.ProjectService
	logger *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/v1/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	project, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// Create handles POST /api/v1/projects. Admin only.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	project, err := h.svc.CreateProject(r.Context(), projectInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_created",
		"project_id", project.ID,
		"title", project.Title,
	)

	writeJSON(w, http.StatusCreated, project)
}

// Update handles PUT /api/v1/projects/{id}. Admin only.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	project, err := h.svc.UpdateProject(r.Context(), id, projectInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_updated", "project_id", project.ID)

	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/v1/projects/{id}. Admin only.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_deleted", "project_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// projectInput converts a request DTO into a service input.
func projectInput(req dto.ProjectRequest) service.ProjectInput {
	return service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		GithubLink:  req.GithubLink,
		DemoLink:    req.DemoLink,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Version:     req.Version,
	}
}

// handleServiceError maps project service errors to HTTP responses.
func (h *ProjectHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Title is required")
	case errors.Is(err, service.ErrDescriptionRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Description is required")
	case errors.Is(err, service.ErrInvalidProjectStatus):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid project status")
	case errors.Is(err, service.ErrInvalidLink):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid link URL")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
