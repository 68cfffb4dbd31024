// AngelaMos | 2026
// main_test.go

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/usha3107/multi-tenant-saas/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenDepsShutsDownTracingWhenDatabaseFails(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := &config.Config{
		App: config.AppConfig{Name: "saas", Version: "test", Environment: "test"},
		Otel: config.OtelConfig{
			Enabled:     true,
			Endpoint:    "127.0.0.1:4317",
			Insecure:    true,
			SampleRate:  1,
			ServiceName: "saas-test",
		},
		Database: config.DatabaseConfig{
			URL:          "postgres://saas@127.0.0.1:1/saas?sslmode=disable&connect_timeout=1",
			MaxOpenConns: 1,
		},
	}

	d, err := openDeps(context.Background(), cfg, discardLogger())

	require.Error(t, err)
	assert.Nil(t, d)

	_, span := otel.Tracer("main_test").Start(context.Background(), "after-failure")
	defer span.End()
	assert.False(t, span.IsRecording(), "tracer provider should be shut down")
}

func TestCloseSkipsUnopenedDeps(t *testing.T) {
	assert.NotPanics(t, func() {
		(&deps{}).close(discardLogger())
	})
}
