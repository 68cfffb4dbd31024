// AngelaMos | 2026
// handler.go

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/user"
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

// RegisterRoutes mounts the auth endpoints. credentialLimit guards the
// unauthenticated endpoints that accept passwords.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	credentialLimit func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(credentialLimit).Post("/register-tenant", h.RegisterTenant)
		r.With(credentialLimit).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) RegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req RegisterTenantRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	t, admin, err := h.service.RegisterTenant(r.Context(), req)
	if err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	core.Created(w, "Tenant registered successfully", RegisterTenantResponse{
		TenantID:  t.ID,
		Subdomain: t.Subdomain,
		AdminUser: user.ToUserResponse(admin),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "user")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OKMessage(w, "Login successful", resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Me(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "Logged out successfully", nil)
}
