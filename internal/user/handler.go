// AngelaMos | 2026
// handler.go

package user

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

		r.Post("/tenants/{tenantID}/users", h.Create)
		r.Get("/tenants/{tenantID}/users", h.List)
		r.Get("/users/{userID}", h.Get)
		r.Put("/users/{userID}", h.Update)
		r.Delete("/users/{userID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req CreateUserRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "user")
		return
	}

	u, err := h.service.Create(r.Context(), p, chi.URLParam(r, "tenantID"), req)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.Created(w, "User created successfully", ToUserResponse(u))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()

	params := ListParams{
		Page:   core.PageFromRequest(r, defaultListLimit),
		Search: q.Get("search"),
		Role:   q.Get("role"),
	}

	users, total, err := h.service.List(r.Context(), p, chi.URLParam(r, "tenantID"), params)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.Paginated(w, "users", ToUserResponseList(users), params.Page, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	u, err := h.service.Get(r.Context(), p, chi.URLParam(r, "userID"))
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req UpdateUserRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "user")
		return
	}

	u, err := h.service.Update(r.Context(), p, chi.URLParam(r, "userID"), req)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OKMessage(w, "User updated successfully", ToUserResponse(u))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "userID")); err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OKMessage(w, "User deleted successfully", nil)
}
