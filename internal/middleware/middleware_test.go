// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func principalEcho(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())
	fmt.Fprintf(w, "%s/%s/%s", p.UserID, p.TenantID, p.Role)
}

func TestAuthenticator(t *testing.T) {
	claims := &AccessTokenClaims{
		Principal: policy.Principal{UserID: "u-1", TenantID: "acme", Role: policy.RoleUser},
		JTI:       "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	tests := []struct {
		name        string
		header      string
		verifier    stubVerifier
		revocations RevocationChecker
		wantCode    int
		wantBody    string
	}{
		{"valid", "Bearer good", stubVerifier{claims: claims}, stubRevocations{}, http.StatusOK, "u-1/acme/user"},
		{"lowercase scheme", "bearer good", stubVerifier{claims: claims}, nil, http.StatusOK, "u-1/acme/user"},
		{"missing header", "", stubVerifier{claims: claims}, nil, http.StatusUnauthorized, "missing authorization token"},
		{"basic scheme", "Basic abc", stubVerifier{claims: claims}, nil, http.StatusUnauthorized, "missing authorization token"},
		{"expired", "Bearer old", stubVerifier{err: fmt.Errorf("verify: %w", core.ErrTokenExpired)}, nil, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"invalid", "Bearer bad", stubVerifier{err: errors.New("boom")}, nil, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"revoked", "Bearer good", stubVerifier{claims: claims}, stubRevocations{revoked: true}, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"revocation store down", "Bearer good", stubVerifier{claims: claims}, stubRevocations{err: errors.New("redis down")}, http.StatusOK, "u-1/acme/user"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := Authenticator(tc.verifier, tc.revocations)(http.HandlerFunc(principalEcho))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestGetPrincipalWithoutClaims(t *testing.T) {
	p := GetPrincipal(context.Background())
	assert.Equal(t, policy.Principal{}, p)
	assert.Nil(t, GetClaims(context.Background()))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDBytes+1))
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain uses last hop", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.2"}, "10.0.0.9:1234", "10.0.0.2"},
		{"real ip", map[string]string{"X-Real-IP": "2.2.2.2"}, "10.0.0.9:1234", "2.2.2.2"},
		{"remote addr", nil, "10.0.0.9:1234", "10.0.0.9"},
		{"remote without port", nil, "10.0.0.9", "10.0.0.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(req))
		})
	}
}

func TestAuditIPReachesContext(t *testing.T) {
	var ip string
	h := AuditIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = audit.IPAddress(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestRecovererWritesEnvelope(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestWrapStatusDefaultsToOK(t *testing.T) {
	w, status := WrapStatus(httptest.NewRecorder())
	_, err := w.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status())

	w, status = WrapStatus(httptest.NewRecorder())
	w.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, status())
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimiterFallsBackToLocalBucket(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{Limit: Per(1, 1, time.Minute)})
	h := rl.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.RemoteAddr = "198.51.100.1:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := call()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := call()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestRateLimitKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects/3f2b8c1e-1111-4a4a-9b9b-123456789abc/tasks", nil)
	req.RemoteAddr = "198.51.100.1:4000"

	assert.Equal(t, "ratelimit:ip:198.51.100.1", KeyByTenant(req))
	assert.Equal(t, "ratelimit:ip:198.51.100.1:endpoint:/api/projects/{id}/tasks", KeyByIPAndEndpoint(req))

	ctx := WithClaims(req.Context(), &AccessTokenClaims{
		Principal: policy.Principal{UserID: "u-1", TenantID: "acme", Role: policy.RoleUser},
	})
	assert.Equal(t, "ratelimit:tenant:acme", KeyByTenant(req.WithContext(ctx)))

	ctx = WithClaims(req.Context(), &AccessTokenClaims{
		Principal: policy.Principal{UserID: "root", Role: policy.RoleSuperAdmin},
	})
	assert.Equal(t, "ratelimit:user:root", KeyByTenant(req.WithContext(ctx)))
}

func TestPerDefaults(t *testing.T) {
	l := Per(30, 0, 0)
	assert.Equal(t, 30, l.Burst)
	assert.Equal(t, time.Minute, l.Period)
}

func TestTracingPassesThroughStatus(t *testing.T) {
	var requestID string
	h := RequestID(Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, requestID)
}

func TestBucketSetSweepsIdleKeys(t *testing.T) {
	s := newBucketSet(Per(10, 0, time.Minute))
	start := time.Now()

	s.take("stale", start)
	s.take("fresh", start.Add(bucketIdleTTL))
	require.Len(t, s.buckets, 2)

	s.take("fresh", start.Add(bucketIdleTTL+sweepEvery))
	assert.NotContains(t, s.buckets, "stale")
	assert.Contains(t, s.buckets, "fresh")
}
