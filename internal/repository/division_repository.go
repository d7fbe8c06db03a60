package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable/internal/models"
)

const divisionDetailSelect = `
SELECT d.id, d.name, d.shift_id, d.plan_id, d.cycle_id, d.created_at, d.updated_at,
       sh.name AS shift_name, p.name AS plan_name, c.name AS cycle_name
FROM divisions d
JOIN shifts sh ON sh.id = d.shift_id
JOIN plans p ON p.id = d.plan_id
JOIN cycles c ON c.id = d.cycle_id`

// DivisionRepository persists divisions.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository creates a division repository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// List returns divisions matching filter with their shift, plan and cycle names.
func (r *DivisionRepository) List(ctx context.Context, filter models.DivisionFilter) ([]models.DivisionDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.ShiftID > 0 {
		conditions = append(conditions, "d.shift_id = ?")
		args = append(args, filter.ShiftID)
	}
	if filter.PlanID > 0 {
		conditions = append(conditions, "d.plan_id = ?")
		args = append(args, filter.PlanID)
	}
	if filter.CycleID > 0 {
		conditions = append(conditions, "d.cycle_id = ?")
		args = append(args, filter.CycleID)
	}

	query := divisionDetailSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY sh.name ASC, d.name ASC"

	divisions := []models.DivisionDetail{}
	if err := r.db.SelectContext(ctx, &divisions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// FindByID loads a division. It returns sql.ErrNoRows when the id is unknown.
func (r *DivisionRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Division, error) {
	target := pick(r.db, exec)
	const query = `SELECT id, name, shift_id, plan_id, cycle_id, created_at, updated_at FROM divisions WHERE id = ?`
	var division models.Division
	if err := sqlx.GetContext(ctx, target, &division, target.Rebind(query), id); err != nil {
		return nil, err
	}
	return &division, nil
}

// FindDetailByID loads a division with display names.
func (r *DivisionRepository) FindDetailByID(ctx context.Context, id int64) (*models.DivisionDetail, error) {
	query := divisionDetailSelect + "\nWHERE d.id = ?"
	var division models.DivisionDetail
	if err := r.db.GetContext(ctx, &division, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &division, nil
}

// Create inserts a division.
func (r *DivisionRepository) Create(ctx context.Context, division *models.Division) error {
	now := time.Now().UTC()
	division.CreatedAt = now
	division.UpdatedAt = now

	const query = `INSERT INTO divisions (name, shift_id, plan_id, cycle_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, division.Name, division.ShiftID, division.PlanID, division.CycleID, now, now)
	if err != nil {
		return fmt.Errorf("create division: %w", err)
	}
	division.ID = id
	return nil
}

// Rename changes the division name.
func (r *DivisionRepository) Rename(ctx context.Context, id int64, name string) error {
	const query = `UPDATE divisions SET name = ?, updated_at = ? WHERE id = ?`
	if err := execAffecting(ctx, r.db, query, name, time.Now().UTC(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("rename division: %w", err)
	}
	return nil
}

// Delete removes a division that has no schedules.
func (r *DivisionRepository) Delete(ctx context.Context, id int64) error {
	if err := execAffecting(ctx, r.db, `DELETE FROM divisions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("delete division: %w", err)
	}
	return nil
}
