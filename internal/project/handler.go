// AngelaMos | 2026
// handler.go

package project

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

		r.Post("/projects", h.Create)
		r.Get("/projects", h.List)
		r.Get("/projects/{projectID}", h.Get)
		r.Put("/projects/{projectID}", h.Update)
		r.Delete("/projects/{projectID}", h.Delete)
	})
}

// Create takes the tenant from the token. A super_admin passes
// ?tenantId= to choose one.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req CreateProjectRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "project")
		return
	}

	proj, err := h.service.Create(r.Context(), p, r.URL.Query().Get("tenantId"), req)
	if err != nil {
		core.WriteError(w, err, "project")
		return
	}

	core.Created(w, "Project created successfully", ToProjectResponse(proj))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()

	params := ListParams{
		Page:   core.PageFromRequest(r, defaultListLimit),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if tenantID := q.Get("tenantId"); tenantID != "" {
		params.TenantID = &tenantID
	}

	rows, total, err := h.service.List(r.Context(), p, params)
	if err != nil {
		core.WriteError(w, err, "project")
		return
	}

	core.Paginated(w, "projects", ToDetailResponseList(rows), params.Page, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	d, err := h.service.Get(r.Context(), p, chi.URLParam(r, "projectID"))
	if err != nil {
		core.WriteError(w, err, "project")
		return
	}

	core.OK(w, ToDetailResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req UpdateProjectRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "project")
		return
	}

	proj, err := h.service.Update(r.Context(), p, chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.WriteError(w, err, "project")
		return
	}

	core.OKMessage(w, "Project updated successfully", ToProjectResponse(proj))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "projectID")); err != nil {
		core.WriteError(w, err, "project")
		return
	}

	core.OKMessage(w, "Project deleted successfully", nil)
}
