// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/usha3107/multi-tenant-saas/internal/config"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

const (
	claimTenantID = "tenant_id"
	claimRole     = "role"
	claimType     = "type"

	accessTokenType = "access"
)

// JWTManager signs and verifies ES256 access tokens. The key id is the
// key's RFC 7638 thumbprint, so it is stable across restarts.
type JWTManager struct {
	signer   jwk.Key
	verifier jwk.Key
	jwks     []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	signer, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verifier, err := signer.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verifier.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(verifier); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}
	jwks, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode jwks: %w", err)
	}

	return &JWTManager{
		signer:   signer,
		verifier: verifier,
		jwks:     jwks,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenExpire,
	}, nil
}

func loadSigningKey(path string) (jwk.Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse signing key %s: %w", path, err)
	}

	thumb, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("thumbprint signing key: %w", err)
	}
	for name, value := range map[string]any{
		jwk.AlgorithmKey: jwa.ES256(),
		jwk.KeyIDKey:     base64.RawURLEncoding.EncodeToString(thumb[:12]),
	} {
		if err := key.Set(name, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}
	return key, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files. The private
// key is owner-only, the public key world-readable.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := writePEM(private, privateKeyPath, 0o600); err != nil {
		return err
	}
	return writePEM(public, publicKeyPath, 0o644)
}

func writePEM(key jwk.Key, path string, mode os.FileMode) error {
	encoded, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	//nolint:gosec // G306: mode is chosen per key by the caller
	if err := os.WriteFile(path, encoded, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// CreateAccessToken binds the principal into a signed token. The
// tenant_id claim is omitted for super_admin.
func (m *JWTManager) CreateAccessToken(p policy.Principal) (string, time.Time, error) {
	issued := time.Now()
	expires := issued.Add(m.ttl)

	b := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.issuer).
		Audience([]string{m.audience}).
		Subject(p.UserID).
		IssuedAt(issued).
		NotBefore(issued).
		Expiration(expires).
		Claim(claimType, accessTokenType).
		Claim(claimRole, p.Role.String())
	if p.TenantID != "" {
		b = b.Claim(claimTenantID, p.TenantID)
	}

	tok, err := b.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build access token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256(), m.signer))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return string(signed), expires, nil
}

var (
	errWrongTokenType = errors.New("not an access token")
	errNoSubject      = errors.New("missing sub")
	errBadRole        = errors.New("unknown role")
	errNoTenant       = errors.New("non super_admin token without tenant_id")
)

// VerifyAccessToken checks signature, issuer, audience and time claims and
// rebuilds the principal the token was issued for.
func (m *JWTManager) VerifyAccessToken(_ context.Context, raw string) (*middleware.AccessTokenClaims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verifier),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if expired(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	claims, err := accessClaims(tok)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w: %w", err, core.ErrTokenInvalid)
	}
	return claims, nil
}

func accessClaims(tok jwt.Token) (*middleware.AccessTokenClaims, error) {
	var typ, role, tenantID string

	if err := tok.Get(claimType, &typ); err != nil || typ != accessTokenType {
		return nil, errWrongTokenType
	}
	sub, ok := tok.Subject()
	if !ok || sub == "" {
		return nil, errNoSubject
	}
	if err := tok.Get(claimRole, &role); err != nil || !policy.Role(role).Valid() {
		return nil, errBadRole
	}
	if tok.Has(claimTenantID) {
		if err := tok.Get(claimTenantID, &tenantID); err != nil {
			return nil, errNoTenant
		}
	}
	if tenantID == "" && policy.Role(role) != policy.RoleSuperAdmin {
		return nil, errNoTenant
	}

	jti, _ := tok.JwtID()
	exp, _ := tok.Expiration()

	return &middleware.AccessTokenClaims{
		Principal: policy.Principal{UserID: sub, TenantID: tenantID, Role: policy.Role(role)},
		JTI:       jti,
		ExpiresAt: exp,
	}, nil
}

// jwx reports a failed exp check as `"exp" not satisfied`.
func expired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "expired") ||
		(strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied"))
}

// JWKSHandler serves the verification key for other services.
func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/jwk-set+json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(m.jwks)
	}
}
