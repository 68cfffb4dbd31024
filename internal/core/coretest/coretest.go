// AngelaMos | 2026
// coretest.go

// Package coretest holds shared test doubles for service and repository
// tests.
package coretest

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

// Tx is a core.Transactor for services whose repositories are in-memory
// fakes. It hands a nil DBTX to fn and counts outcomes.
type Tx struct {
	Commits   int
	Rollbacks int
}

func (t *Tx) Conn() core.DBTX {
	return nil
}

func (t *Tx) WithTx(_ context.Context, fn func(tx core.DBTX) error) error {
	if err := fn(nil); err != nil {
		t.Rollbacks++
		return err
	}
	t.Commits++
	return nil
}

// NewMock returns an sqlx handle backed by sqlmock. Unmet expectations
// fail the test at cleanup.
func NewMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		_ = raw.Close() //nolint:errcheck // test cleanup
	})

	return sqlx.NewDb(raw, "sqlmock"), mock
}
