// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/config"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
	"github.com/usha3107/multi-tenant-saas/internal/tenant"
	"github.com/usha3107/multi-tenant-saas/internal/user"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

type TokenIssuer interface {
	CreateAccessToken(p policy.Principal) (string, time.Time, error)
}

type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type Service struct {
	db      core.Transactor
	tenants func(core.DBTX) tenant.Repository
	users   func(core.DBTX) user.Repository
	tokens  TokenIssuer
	revoker Revoker
	tenancy config.TenancyConfig
	audit   audit.Emitter
}

func NewService(
	db core.Transactor,
	tenants func(core.DBTX) tenant.Repository,
	users func(core.DBTX) user.Repository,
	tokens TokenIssuer,
	revoker Revoker,
	tenancy config.TenancyConfig,
	emitter audit.Emitter,
) *Service {
	return &Service{
		db:      db,
		tenants: tenants,
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		tenancy: tenancy,
		audit:   emitter,
	}
}

// RegisterTenant creates the tenant and its first tenant_admin in one
// transaction. Either both rows exist afterwards or neither does.
func (s *Service) RegisterTenant(
	ctx context.Context,
	req RegisterTenantRequest,
) (*tenant.Tenant, *user.User, error) {
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if !subdomainPattern.MatchString(subdomain) {
		return nil, nil, core.InvalidInputError(
			"subdomain may contain only lowercase letters, digits and inner hyphens")
	}

	hash, err := core.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	t := &tenant.Tenant{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(req.TenantName),
		Subdomain:        subdomain,
		Status:           tenant.StatusActive,
		SubscriptionPlan: s.tenancy.DefaultPlan,
		MaxUsers:         s.tenancy.DefaultMaxUsers,
		MaxProjects:      s.tenancy.DefaultMaxProjects,
	}
	admin := &user.User{
		ID:           uuid.New().String(),
		TenantID:     &t.ID,
		Email:        strings.ToLower(strings.TrimSpace(req.AdminEmail)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.AdminFullName),
		Role:         policy.RoleTenantAdmin.String(),
		IsActive:     true,
	}

	err = s.db.WithTx(ctx, func(tx core.DBTX) error {
		if err := s.tenants(tx).Create(ctx, t); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return core.DuplicateError("subdomain")
			}
			return err
		}
		if err := s.users(tx).Create(ctx, admin); err != nil {
			return fmt.Errorf("create tenant admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   t.ID,
		UserID:     admin.ID,
		Action:     audit.ActionRegisterTenant,
		EntityType: audit.EntityTenant,
		EntityID:   t.ID,
	})

	return t, admin, nil
}

// Login resolves the tenant first so that a wrong subdomain is a 404 even
// when the email exists in another tenant.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	conn := s.db.Conn()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	subdomain := strings.ToLower(strings.TrimSpace(req.TenantSubdomain))

	var (
		u   *user.User
		err error
	)
	if subdomain == "" {
		u, err = s.users(conn).GetSuperAdminByEmail(ctx, email)
	} else {
		var t *tenant.Tenant
		t, err = s.tenants(conn).GetBySubdomain(ctx, subdomain)
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("tenant")
		}
		if err != nil {
			return nil, err
		}
		if !t.IsActive() {
			return nil, core.ForbiddenError("tenant is not active")
		}
		u, err = s.users(conn).GetByEmailInTenant(ctx, email, t.ID)
	}

	if errors.Is(err, core.ErrNotFound) {
		//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
		_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, core.UnauthorizedError("invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, core.UnauthorizedError("invalid email or password")
	}
	if !u.IsActive {
		return nil, core.UnauthorizedError("account is inactive")
	}

	if newHash != "" {
		if err := s.users(conn).UpdatePassword(ctx, u.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "error", err)
		}
	}

	token, expiresAt, err := s.tokens.CreateAccessToken(u.Principal())
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		User:      user.ToUserResponse(u),
		Token:     token,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
		ExpiresAt: expiresAt,
	}, nil
}

// Me reloads the caller from storage. The token's role and tenant stay
// authoritative for authorization; this is display data only.
func (s *Service) Me(ctx context.Context, p policy.Principal) (*MeResponse, error) {
	conn := s.db.Conn()

	u, err := s.users(conn).GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	resp := &MeResponse{UserResponse: user.ToUserResponse(u)}
	if u.TenantID != nil {
		t, err := s.tenants(conn).GetByID(ctx, *u.TenantID)
		if err != nil {
			return nil, err
		}
		tr := tenant.ToTenantResponse(t)
		resp.Tenant = &tr
	}

	return resp, nil
}

func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil || s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt)
}

// EnsureSuperAdmin creates the configured super_admin account when it
// does not exist yet. An empty email disables bootstrapping.
func (s *Service) EnsureSuperAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SuperAdminEmail))
	if email == "" {
		return nil
	}

	repo := s.users(s.db.Conn())
	_, err := repo.GetSuperAdminByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("look up super admin: %w", err)
	}

	hash, err := core.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     cfg.SuperAdminName,
		Role:         policy.RoleSuperAdmin.String(),
		IsActive:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}

	slog.InfoContext(ctx, "super admin created", "user_id", admin.ID, "email", email)
	return nil
}
