package task

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-tasks-api/internal/auth"
	"github.com/redmonkez12/go-tasks-api/internal/httputil"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

// Handler contains HTTP handlers for task endpoints. Every route is expected
// to sit behind auth.Middleware.RequireAuth.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the task endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/toggle", h.Toggle)
}

// List handles listing the caller's tasks
// @Summary      List tasks
// @Description  Paginated list of the caller's tasks, newest first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page   query string false "Page number (default 1)"
// @Param        limit  query string false "Page size (default 10, max 100)"
// @Param        status query string false "pending, in_progress or completed"
// @Param        search query string false "Substring of the title"
// @Success      200 {object} httputil.Envelope{data=Page}
// @Failure      401 {object} httputil.Envelope
// @Router       /tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.service.List(r.Context(), owner, ListParams{
		Page:   q.Get("page"),
		Limit:  q.Get("limit"),
		Status: q.Get("status"),
		Search: q.Get("search"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "", page, http.StatusOK)
}

// Get handles fetching one task
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} httputil.Envelope{data=Task}
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Task not found"
// @Router       /tasks/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "", t, http.StatusOK)
}

// Create handles task creation
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Task"
// @Success      201 {object} httputil.Envelope{data=Task}
// @Failure      400 {object} httputil.Envelope "Validation failed"
// @Failure      401 {object} httputil.Envelope
// @Router       /tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in CreateInput
	if !httputil.Bind(w, r, &in, false) {
		return
	}

	t, err := h.service.Create(r.Context(), owner, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Task created successfully", t, http.StatusCreated)
}

// Update handles partial task updates
// @Summary      Update a task
// @Description  Only the provided fields are changed
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string      true "Task ID"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} httputil.Envelope{data=Task}
// @Failure      400 {object} httputil.Envelope "Validation failed or invalid status"
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Task not found"
// @Router       /tasks/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var in UpdateInput
	if !httputil.Bind(w, r, &in, true) {
		return
	}

	t, err := h.service.Update(r.Context(), owner, id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Task updated successfully", t, http.StatusOK)
}

// Delete handles task removal
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Task not found"
// @Router       /tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Task deleted successfully", nil, http.StatusOK)
}

// Toggle handles advancing the task status
// @Summary      Toggle task status
// @Description  pending -> in_progress -> completed -> pending
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} httputil.Envelope{data=Task}
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Task not found"
// @Router       /tasks/{id}/toggle [patch]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	t, err := h.service.Toggle(r.Context(), owner, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.RespondSuccess(w, "Task status toggled successfully", t, http.StatusOK)
}

// owner reads the caller identity placed by the auth middleware.
func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Authorization token required", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// target resolves the caller and the {id} path parameter. An id that is not
// a UUID cannot name any task and is reported as not found.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (owner, id uuid.UUID, ok bool) {
	owner, ok = h.owner(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondNotFound(w)
	case errors.Is(err, ErrInvalidStatus):
		httputil.RespondErrorWithCode(w, "Invalid status", httputil.CodeInvalidStatus, http.StatusBadRequest)
	default:
		logging.GetLoggerFromContext(r.Context()).Error("task request failed", "error", err.Error())
		httputil.RespondInternalError(w)
	}
}

func respondNotFound(w http.ResponseWriter) {
	httputil.RespondErrorWithCode(w, "Task not found", httputil.CodeNotFound, http.StatusNotFound)
}
