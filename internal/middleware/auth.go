// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type claimsKey struct{}

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*AccessTokenClaims, error)
}

// RevocationChecker reports whether a token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccessTokenClaims is what a verified token resolves to. Role and
// tenant are trusted as issued until the token expires.
type AccessTokenClaims struct {
	Principal policy.Principal
	JTI       string
	ExpiresAt time.Time
}

// Authenticator admits requests carrying a valid, unrevoked bearer token
// and stores its claims on the request context. A revocation store
// outage is logged and the token is accepted.
func Authenticator(verifier TokenVerifier, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				core.JSONError(w, core.UnauthorizedError("missing authorization token"))
				return
			}

			claims, err := verifier.VerifyAccessToken(ctx, raw)
			if err != nil {
				core.JSONError(w, tokenError(err))
				return
			}

			if revoked(ctx, revocations, claims) {
				core.JSONError(w, core.TokenRevokedError())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func revoked(ctx context.Context, rc RevocationChecker, claims *AccessTokenClaims) bool {
	if rc == nil || claims.JTI == "" {
		return false
	}
	hit, err := rc.IsRevoked(ctx, claims.JTI)
	if err != nil {
		slog.WarnContext(ctx, "revocation check unavailable, accepting token",
			"user_id", claims.Principal.UserID,
			"error", err,
		)
		return false
	}
	return hit
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenError(err error) error {
	switch {
	case core.IsAppError(err):
		return err
	case errors.Is(err, core.ErrTokenExpired):
		return core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		return core.TokenRevokedError()
	default:
		return core.TokenInvalidError()
	}
}

func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	claims, _ := ctx.Value(claimsKey{}).(*AccessTokenClaims)
	return claims
}

// GetPrincipal returns the zero Principal when the request is
// unauthenticated. Its empty role fails every policy check.
func GetPrincipal(ctx context.Context) policy.Principal {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Principal
	}
	return policy.Principal{}
}

func GetUserID(ctx context.Context) string {
	return GetPrincipal(ctx).UserID
}

func GetTenantID(ctx context.Context) string {
	return GetPrincipal(ctx).TenantID
}
