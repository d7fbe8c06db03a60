package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Constraint violation kinds surfaced by the store.
var (
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("missing foreign key reference")
	ErrCheck      = errors.New("check constraint violated")
)

// ConstraintError reports a store-level constraint violation. Kind is one of
// ErrDuplicate, ErrForeignKey or ErrCheck. Constraint is the constraint name when the
// driver exposes it: lib/pq does, go-sqlite3 reports codes only and leaves it empty.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDuplicate) match a classified error.
func (e *ConstraintError) Is(target error) bool { return target == e.Kind }

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// Classify converts driver constraint errors into *ConstraintError. Any other error is
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return &ConstraintError{Kind: ErrDuplicate, Constraint: pqErr.Constraint, Err: err}
		case pqForeignKeyViolation:
			return &ConstraintError{Kind: ErrForeignKey, Constraint: pqErr.Constraint, Err: err}
		case pqCheckViolation:
			return &ConstraintError{Kind: ErrCheck, Constraint: pqErr.Constraint, Err: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &ConstraintError{Kind: ErrDuplicate, Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &ConstraintError{Kind: ErrForeignKey, Err: err}
		case sqlite3.ErrConstraintCheck:
			return &ConstraintError{Kind: ErrCheck, Err: err}
		}
	}
	return err
}

// ConstraintName returns the violated constraint name, or "" when err is not classified.
func ConstraintName(err error) string {
	var cErr *ConstraintError
	if errors.As(err, &cErr) {
		return cErr.Constraint
	}
	return ""
}

// WithConstraint names the constraint of an unnamed violation. Named violations and
// other errors are returned unchanged.
func WithConstraint(err error, constraint string) error {
	var cErr *ConstraintError
	if constraint == "" || !errors.As(err, &cErr) || cErr.Constraint != "" {
		return err
	}
	named := *cErr
	named.Constraint = constraint
	return &named
}
