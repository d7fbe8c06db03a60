package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/pkg/database"
)

// Queries in this package are written with `?` placeholders and rebound for the
// active driver, so the same statements serve SQLite and Postgres.

func pick(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

func insertReturningID(ctx context.Context, exec sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(query), args...); err != nil {
		return 0, database.Classify(err)
	}
	return id, nil
}

func execAffecting(ctx context.Context, exec sqlx.ExtContext, query string, args ...interface{}) error {
	result, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return database.Classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func exists(ctx context.Context, exec sqlx.ExtContext, query string, args ...interface{}) (bool, error) {
	var found int
	if err := sqlx.GetContext(ctx, exec, &found, exec.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// pairTable is an association table keyed by two foreign keys.
type pairTable struct {
	table string
	left  string
	right string
}

func (p pairTable) link(ctx context.Context, exec sqlx.ExtContext, left, right int64) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", p.table, p.left, p.right)
	if _, err := exec.ExecContext(ctx, exec.Rebind(query), left, right); err != nil {
		return fmt.Errorf("link %s: %w", p.table, database.Classify(err))
	}
	return nil
}

func (p pairTable) unlink(ctx context.Context, exec sqlx.ExtContext, left, right int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", p.table, p.left, p.right)
	if err := execAffecting(ctx, exec, query, left, right); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("unlink %s: %w", p.table, err)
	}
	return nil
}

func (p pairTable) has(ctx context.Context, exec sqlx.ExtContext, left, right int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? AND %s = ?", p.table, p.left, p.right)
	found, err := exists(ctx, exec, query, left, right)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", p.table, err)
	}
	return found, nil
}
