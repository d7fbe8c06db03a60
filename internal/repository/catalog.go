package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// catalog implements the CRUD shared by the name-only tables (teachers, plans, cycles,
// shifts). T must scan the id, name, created_at and updated_at columns.
type catalog[T any] struct {
	db    *sqlx.DB
	table string
}

func (c catalog[T]) columns() string {
	return "id, name, created_at, updated_at"
}

// List returns every row ordered by name.
func (c catalog[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name ASC", c.columns(), c.table)
	items := []T{}
	if err := c.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	return items, nil
}

// FindByID loads one row. It returns sql.ErrNoRows when the id is unknown.
func (c catalog[T]) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*T, error) {
	target := pick(c.db, exec)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", c.columns(), c.table)
	var item T
	if err := sqlx.GetContext(ctx, target, &item, target.Rebind(query), id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Exists reports whether the id is present.
func (c catalog[T]) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", c.table)
	found, err := exists(ctx, pick(c.db, exec), query, id)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", c.table, err)
	}
	return found, nil
}

// Create inserts a row and returns its id.
func (c catalog[T]) Create(ctx context.Context, name string) (int64, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf("INSERT INTO %s (name, created_at, updated_at) VALUES (?, ?, ?) RETURNING id", c.table)
	id, err := insertReturningID(ctx, c.db, query, name, now, now)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", c.table, err)
	}
	return id, nil
}

// Rename changes the name of a row.
func (c catalog[T]) Rename(ctx context.Context, id int64, name string) error {
	query := fmt.Sprintf("UPDATE %s SET name = ?, updated_at = ? WHERE id = ?", c.table)
	if err := execAffecting(ctx, c.db, query, name, time.Now().UTC(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("rename %s: %w", c.table, err)
	}
	return nil
}

// Delete removes a row. Rows still referenced by schedules or divisions fail with a
// foreign key error.
func (c catalog[T]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.table)
	if err := execAffecting(ctx, c.db, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete %s: %w", c.table, err)
	}
	return nil
}
