// Package repository implements the entity store for events, ticket types and
// registrations. It uses pgx directly (no ORM) for transparency and
// performance; MemoryStore offers the same contract in-process.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ErrNoTransaction is returned by locking reads made outside WithTx.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// withTx runs fn inside a transaction carried on the context. Nested calls
// join the outer transaction. Any error from fn rolls everything back.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) (err error) {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// db returns the transaction on ctx, or the pool when there is none.
func db(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// execBatch queues one statement per argument list and executes them as a
// single round trip, stopping at the first failure.
func execBatch(ctx context.Context, q querier, stmt string, argLists [][]any) error {
	if len(argLists) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, args := range argLists {
		batch.Queue(stmt, args...)
	}
	br := q.SendBatch(ctx, batch)
	for range argLists {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

// notFoundOr maps "no such row" and malformed-id errors to a not-found error
// for what, and wraps anything else with op.
func notFoundOr(err error, what, op string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return model.NotFound(what)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
