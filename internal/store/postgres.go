// Package store implements loaner persistence on PostgreSQL using pgx.
//
// Batch inserts run inside one enclosing transaction with a savepoint per
// row: PostgreSQL aborts the whole transaction on any statement error, so
// each insert is wrapped in SAVEPOINT / ROLLBACK TO SAVEPOINT to let the
// batch continue past duplicates and bad rows.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"loanimport/internal/core"
)

const uniqueViolationCode = "23505"

// Postgres is the pgx-backed Store implementation.
type Postgres struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The caller owns the pool lifecycle.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the loaners table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS loaners (
			identifier       TEXT PRIMARY KEY,
			full_name        TEXT NOT NULL DEFAULT '',
			mobile_number    TEXT,
			national_id      TEXT,
			total_amount     DOUBLE PRECISION,
			land_description TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// RunBatch executes fn inside a single transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (p *Postgres) RunBatch(ctx context.Context, fn func(b core.Batch) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&batch{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SelectAll returns every persisted record. Ordering is left to the caller.
func (p *Postgres) SelectAll(ctx context.Context) ([]core.Loaner, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT identifier, full_name, mobile_number, national_id,
		       total_amount, land_description, description
		FROM loaners`)
	if err != nil {
		return nil, fmt.Errorf("select loaners: %w", err)
	}
	defer rows.Close()

	var out []core.Loaner
	for rows.Next() {
		var rec core.Loaner
		if err := rows.Scan(
			&rec.Identifier,
			&rec.FullName,
			&rec.MobileNumber,
			&rec.NationalID,
			&rec.TotalAmount,
			&rec.LandDescription,
			&rec.Description,
		); err != nil {
			return nil, fmt.Errorf("scan loaner: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read loaners: %w", err)
	}
	return out, nil
}

// batch inserts rows inside the enclosing transaction, one savepoint each.
type batch struct {
	tx  pgx.Tx
	seq int
}

// Insert persists one record in its own savepoint. A unique violation on
// the identifier surfaces as core.ErrDuplicateKey; any error leaves the
// enclosing transaction usable for the next row.
func (b *batch) Insert(ctx context.Context, rec core.Loaner) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.seq++
	savepoint := fmt.Sprintf("sp_%d", b.seq)

	if _, err := b.tx.Exec(ctx, "SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	_, err := b.tx.Exec(ctx, `
		INSERT INTO loaners (identifier, full_name, mobile_number, national_id,
		                     total_amount, land_description, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Identifier,
		rec.FullName,
		rec.MobileNumber,
		rec.NationalID,
		rec.TotalAmount,
		rec.LandDescription,
		rec.Description,
	)
	if err != nil {
		// Rollback to savepoint to recover transaction state.
		if _, rbErr := b.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return fmt.Errorf("rollback savepoint: %w", rbErr)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("insert %q: %w", rec.Identifier, core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert %q: %w", rec.Identifier, err)
	}

	if _, err := b.tx.Exec(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
