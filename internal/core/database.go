// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/usha3107/multi-tenant-saas/internal/config"
)

const (
	pgUniqueViolation = "23505"
	dbPingTimeout     = 5 * time.Second
)

// DBTX is the query surface shared by *sqlx.DB and *sqlx.Tx. Repositories
// take it so the same code runs inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Transactor runs fn inside a single database transaction. Services
// depend on it so that multi-step writes (tenant registration, quota
// check plus insert, cascading deletes) commit or roll back together.
type Transactor interface {
	Conn() DBTX
	WithTx(ctx context.Context, fn func(tx DBTX) error) error
}

// SQLTransactor implements Transactor over any *sqlx.DB, including one
// backed by sqlmock.
type SQLTransactor struct {
	DB *sqlx.DB
}

func (s SQLTransactor) Conn() DBTX {
	return s.DB
}

func (s SQLTransactor) WithTx(ctx context.Context, fn func(tx DBTX) error) error {
	return InTx(ctx, s.DB, fn)
}

// Database is the process-wide Postgres pool.
type Database struct {
	SQLTransactor
}

func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(withJitter(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	d := &Database{SQLTransactor{DB: db}}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// Ping satisfies the readiness checker.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// InTx commits when fn returns nil and rolls back otherwise, including
// when fn panics.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx DBTX) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && err != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// MapDBError turns driver-level errors into core sentinels.
func MapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// withJitter spreads connection recycling so the pool does not reconnect
// all at once.
func withJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	//nolint:gosec // G404: pool timing, not security sensitive
	return base + time.Duration(rand.Int64N(int64(base/10)+1))
}

// EscapeLike escapes ILIKE wildcards in user-supplied search text.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// Conditions accumulates WHERE clauses with positional placeholders.
type Conditions struct {
	clauses []string
	Args    []any
}

// Add appends clause, replacing each "?" with the next $n placeholder
// bound to arg.
func (c *Conditions) Add(clause string, arg any) {
	c.Args = append(c.Args, arg)
	c.clauses = append(c.clauses,
		strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(c.Args))))
}

// Next returns the placeholder for an argument appended after the
// conditions, such as LIMIT and OFFSET.
func (c *Conditions) Next(arg any) string {
	c.Args = append(c.Args, arg)
	return fmt.Sprintf("$%d", len(c.Args))
}

func (c *Conditions) Where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}
