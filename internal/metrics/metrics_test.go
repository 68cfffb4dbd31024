// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New("saas")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/projects/{projectID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/"+id, nil))
	}

	assert.InDelta(t, 3, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues(http.MethodGet, "/projects/{projectID}", "404")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestsTotal))
}

func TestRecordDecision(t *testing.T) {
	m := New("saas")

	m.RecordDecision("delete_user", policy.Allow())
	m.RecordDecision("delete_user", policy.Deny(policy.SelfDelete))
	m.RecordDecision("delete_user", policy.Deny(policy.SelfDelete))

	assert.InDelta(t, 1, testutil.ToFloat64(
		m.authzDecisions.WithLabelValues("delete_user", "allow", "")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(
		m.authzDecisions.WithLabelValues("delete_user", "deny", "self_delete")), 0)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("saas")
	m.RecordDecision("create_project", policy.Deny(policy.LimitReached))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `saas_authz_decisions_total{action="create_project",decision="deny",reason="limit_reached"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRegisterRedisExposesPoolGauges(t *testing.T) {
	m := New("saas")
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	m.RegisterRedis(client, "cache")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `redis_pool_total_conns{pool="cache"} 0`)
}
