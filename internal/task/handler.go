// AngelaMos | 2026
// handler.go

package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/projects/{projectID}/tasks", h.Create)
		r.Get("/projects/{projectID}/tasks", h.ListByProject)
		r.Get("/tasks", h.ListMine)
		r.Get("/tasks/{taskID}", h.Get)
		r.Patch("/tasks/{taskID}/status", h.UpdateStatus)
		r.Put("/tasks/{taskID}", h.Update)
		r.Delete("/tasks/{taskID}", h.Delete)
	})
}

func listParams(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		Page:       core.PageFromRequest(r, defaultListLimit),
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssignedTo: q.Get("assignedTo"),
		Search:     q.Get("search"),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req CreateTaskRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "task")
		return
	}

	t, err := h.service.Create(r.Context(), p, chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.Created(w, "Task created successfully", ToTaskResponse(t))
}

func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	params := listParams(r)

	rows, total, err := h.service.ListByProject(r.Context(), p, chi.URLParam(r, "projectID"), params)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.Paginated(w, "tasks", ToDetailResponseList(rows), params.Page, total)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	params := listParams(r)

	rows, total, err := h.service.ListMine(r.Context(), p, params)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.Paginated(w, "tasks", ToDetailResponseList(rows), params.Page, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	d, err := h.service.Get(r.Context(), p, chi.URLParam(r, "taskID"))
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OK(w, ToDetailResponse(d))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req UpdateStatusRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "task")
		return
	}

	t, err := h.service.UpdateStatus(r.Context(), p, chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OKMessage(w, "Task status updated", ToTaskResponse(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req UpdateTaskRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "task")
		return
	}

	t, err := h.service.Update(r.Context(), p, chi.URLParam(r, "taskID"), req)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OKMessage(w, "Task updated successfully", ToTaskResponse(t))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "taskID")); err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OKMessage(w, "Task deleted successfully", nil)
}
