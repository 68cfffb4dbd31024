// AngelaMos | 2026
// handler.go

package tenant

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

		r.Get("/tenants", h.List)
		r.Get("/tenants/{tenantID}", h.Get)
		r.Put("/tenants/{tenantID}", h.Update)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	t, stats, err := h.service.Get(r.Context(), p, chi.URLParam(r, "tenantID"))
	if err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	core.OK(w, ToTenantDetailResponse(t, stats))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var req UpdateTenantRequest
	if err := core.DecodeAndValidate(r, h.validator, &req); err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	t, err := h.service.Update(r.Context(), p, chi.URLParam(r, "tenantID"), req)
	if err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	core.OKMessage(w, "Tenant updated successfully", ToTenantResponse(t))
}

// List is super_admin only; filters are status and subscriptionPlan.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()

	params := ListParams{
		Page:             core.PageFromRequest(r, core.DefaultPageLimit),
		Status:           q.Get("status"),
		SubscriptionPlan: q.Get("subscriptionPlan"),
	}

	rows, total, err := h.service.List(r.Context(), p, params)
	if err != nil {
		core.WriteError(w, err, "tenant")
		return
	}

	core.Paginated(w, "tenants", ToTenantSummaryList(rows), params.Page, total)
}
