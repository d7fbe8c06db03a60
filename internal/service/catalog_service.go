package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// NameRequest creates or renames a name-only catalog record.
type NameRequest struct {
	Name validation.Raw `json:"name" validate:"required,max=120"`
}

type namedRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*T, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error)
	Create(ctx context.Context, name string) (int64, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// namedService is the CRUD workflow shared by teachers, plans, cycles and shifts.
type namedService[T any] struct {
	repo      namedRepository[T]
	noun      string
	validator *validator.Validate
	logger    *zap.Logger
}

func newNamedService[T any](repo namedRepository[T], noun string, validate *validator.Validate, logger *zap.Logger) namedService[T] {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return namedService[T]{repo: repo, noun: noun, validator: validate, logger: logger}
}

// List returns every record ordered by name.
func (s namedService[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, catalogError(err, s.noun, "list "+s.noun+"s")
	}
	return items, nil
}

// Get returns one record.
func (s namedService[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, catalogError(err, s.noun, "load "+s.noun)
	}
	return item, nil
}

// Create validates the name and stores a new record.
func (s namedService[T]) Create(ctx context.Context, req NameRequest) (*T, error) {
	name, err := s.name(req)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, catalogError(err, s.noun, "create "+s.noun)
	}
	s.logger.Info(s.noun+" created", zap.Int64("id", id), zap.String("name", name))
	return s.Get(ctx, id)
}

// Rename changes the name of a record.
func (s namedService[T]) Rename(ctx context.Context, id int64, req NameRequest) (*T, error) {
	name, err := s.name(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Rename(ctx, id, name); err != nil {
		return nil, catalogError(err, s.noun, "update "+s.noun)
	}
	return s.Get(ctx, id)
}

// Delete removes a record that nothing references anymore.
func (s namedService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return catalogError(err, s.noun, "delete "+s.noun)
	}
	s.logger.Info(s.noun+" deleted", zap.Int64("id", id))
	return nil
}

func (s namedService[T]) require(ctx context.Context, id int64) error {
	found, err := s.repo.Exists(ctx, nil, id)
	if err != nil {
		return catalogError(err, s.noun, "load "+s.noun)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, s.noun+" not found")
	}
	return nil
}

func (s namedService[T]) name(req NameRequest) (string, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return "", err
	}
	return validation.RequireText(req.Name.String(), "name")
}

// catalogError maps store errors of catalog writes to API errors.
func catalogError(err error, noun, action string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, noun+" not found")
	case errors.Is(err, database.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, noun+" already exists")
	case errors.Is(err, database.ErrForeignKey):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, noun+" is still referenced by other records")
	case errors.Is(err, database.ErrCheck):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+noun+" values")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action)
}

// linkError maps store errors of association writes. A missing parent is NotFound rather
// than a reference conflict.
func linkError(err error, link string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, link+" not found")
	case errors.Is(err, database.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, link+" already exists")
	case errors.Is(err, database.ErrForeignKey):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, fmt.Sprintf("%s references a missing record", link))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+link)
}
