// AngelaMos | 2026
// core_test.go

package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usha3107/multi-tenant-saas/internal/config"
)

type teapotError struct{}

func (teapotError) Error() string         { return "teapot" }
func (teapotError) HTTPStatus() int       { return http.StatusTeapot }
func (teapotError) PublicMessage() string { return "short and stout" }
func (teapotError) PublicCode() string    { return "TEAPOT" }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", fmt.Errorf("create: %w", ErrDuplicateKey), http.StatusConflict, "CONFLICT"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"token expired", fmt.Errorf("verify: %w", ErrTokenExpired), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"token revoked", ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"app error", ForbiddenError("tenant suspended"), http.StatusForbidden, "FORBIDDEN"},
		{"status error", fmt.Errorf("wrap: %w", teapotError{}), http.StatusTeapot, "TEAPOT"},
		{"validation", &ValidationError{Missing: []string{"email"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err, "project")

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: relation users does not exist"), "user")

	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestPaginatedShape(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, "projects", []string{"a", "b"}, Page{Page: 2, Limit: 2}, 5)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Projects   []string   `json:"projects"`
			Total      int        `json:"total"`
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"a", "b"}, body.Data.Projects)
	assert.Equal(t, 5, body.Data.Total)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, Limit: 2}, body.Data.Pagination)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 10}, Page{}.Normalize(10))
	assert.Equal(t, Page{Page: 3, Limit: MaxPageLimit}, Page{Page: 3, Limit: 500}.Normalize(10))
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.TotalPages(0))
}

func TestPageFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=-4&limit=abc", nil)
	assert.Equal(t, Page{Page: 1, Limit: 50}, PageFromRequest(req, 50))
}

type registerBody struct {
	TenantName string `json:"tenantName" validate:"required"`
	Email      string `json:"adminEmail" validate:"required,email"`
	Plan       string `json:"plan" validate:"omitempty,oneof=free pro enterprise"`
}

func TestDecodeAndValidateListsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"plan":"gold"}`))

	var dst registerBody
	err := DecodeAndValidate(req, NewValidator(), &dst)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"adminEmail", "tenantName"}, verr.Missing)
	assert.Equal(t, []string{"plan (oneof)"}, verr.Invalid)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeAndValidateEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	var dst registerBody
	err := DecodeAndValidate(req, NewValidator(), &dst)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMapDBError(t *testing.T) {
	assert.NoError(t, MapDBError("op", nil))
	assert.ErrorIs(t, MapDBError("get user", sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, MapDBError("create user", &pgconn.PgError{Code: "23505"}), ErrDuplicateKey)

	other := MapDBError("create user", &pgconn.PgError{Code: "23503"})
	assert.NotErrorIs(t, other, ErrDuplicateKey)
}

func TestInTxRollsBackOnError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := sqlx.NewDb(raw, "sqlmock")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	sentinel := errors.New("second insert failed")
	err = SQLTransactor{DB: db}.WithTx(context.Background(), func(tx DBTX) error {
		if _, execErr := tx.ExecContext(context.Background(), "INSERT INTO tenants DEFAULT VALUES"); execErr != nil {
			return execErr
		}
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxCommits(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := sqlx.NewDb(raw, "sqlmock")
	mock.ExpectBegin()
	mock.ExpectCommit()

	err = InTx(context.Background(), db, func(DBTX) error { return nil })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = VerifyPasswordTimingSafe("wrong", &hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyUpgradesOutdatedParams(t *testing.T) {
	old := currentParams
	old.time = 2
	salt := make([]byte, saltLength)
	legacy := old.encode(salt, old.derive("correct horse", salt))

	ok, rehashed, err := VerifyPasswordTimingSafe("correct horse", &legacy)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehashed)
	assert.Contains(t, rehashed, "t=1,")

	ok, rehashed, err = VerifyPasswordTimingSafe("correct horse", &rehashed)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehashed)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, h := range []string{"plain", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=18$m=1,t=1,p=1$AA$AA"} {
		ok, err := VerifyPassword("x", h)
		require.ErrorIs(t, err, errMalformedHash, h)
		assert.False(t, ok)
	}
}

func TestDisabledTelemetryIsNoop(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.OtelConfig{}, config.AppConfig{})
	require.NoError(t, err)
	assert.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	AddSpanEvent(ctx, "evt")
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestConditionsPlaceholders(t *testing.T) {
	var c Conditions
	assert.Equal(t, "", c.Where())

	c.Add("tenant_id = ?", "acme")
	c.Add("(title ILIKE ? OR description ILIKE ?)", "%"+EscapeLike("50%_off")+"%")

	assert.Equal(t, "WHERE tenant_id = $1 AND (title ILIKE $2 OR description ILIKE $2)", c.Where())
	assert.Equal(t, "$3", c.Next(10))
	assert.Equal(t, []any{"acme", `%50\%\_off%`, 10}, c.Args)
}
