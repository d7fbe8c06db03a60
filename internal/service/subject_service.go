package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, id int64, name string, baseHours int) error
	Delete(ctx context.Context, id int64) error
	ListByPlan(ctx context.Context, planID int64) ([]models.Subject, error)
	ListByCycle(ctx context.Context, cycleID int64) ([]models.Subject, error)
}

// SubjectRequest captures fields for creating or updating subjects. BaseHours seeds the
// weekly hours; scheduled slots are counted on top of it.
type SubjectRequest struct {
	Name      validation.Raw `json:"name" validate:"required,max=120"`
	BaseHours validation.Raw `json:"base_hours"`
}

// SubjectService handles subject workflows.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns all subjects.
func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, catalogError(err, "subject", "list subjects")
	}
	return subjects, nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, catalogError(err, "subject", "load subject")
	}
	return subject, nil
}

// Create adds a subject. Weekly hours start equal to the base hours.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	name, baseHours, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	subject := &models.Subject{Name: name, BaseHours: baseHours}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, catalogError(err, "subject", "create subject")
	}
	s.logger.Info("subject created", zap.Int64("id", subject.ID), zap.String("name", name), zap.Int("base_hours", baseHours))
	return subject, nil
}

// Update renames the subject and changes its base hours. Omitted base hours keep the stored
// value; scheduled hours are kept either way.
func (s *SubjectService) Update(ctx context.Context, id int64, req SubjectRequest) (*models.Subject, error) {
	name, baseHours, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	if validation.NormalizeText(req.BaseHours.String()) == "" {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		baseHours = current.BaseHours
	}
	if err := s.repo.Update(ctx, id, name, baseHours); err != nil {
		return nil, catalogError(err, "subject", "update subject")
	}
	return s.Get(ctx, id)
}

// Delete removes a subject that no schedule or allocation references.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return catalogError(err, "subject", "delete subject")
	}
	s.logger.Info("subject deleted", zap.Int64("id", id))
	return nil
}

// ListByPlan returns the subjects of a plan.
func (s *SubjectService) ListByPlan(ctx context.Context, planID int64) ([]models.Subject, error) {
	subjects, err := s.repo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, catalogError(err, "subject", "list plan subjects")
	}
	return subjects, nil
}

// ListByCycle returns the subject obligations of a cycle.
func (s *SubjectService) ListByCycle(ctx context.Context, cycleID int64) ([]models.Subject, error) {
	subjects, err := s.repo.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, catalogError(err, "subject", "list cycle subjects")
	}
	return subjects, nil
}

func (s *SubjectService) parse(req SubjectRequest) (string, int, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return "", 0, err
	}
	name, err := validation.RequireText(req.Name.String(), "name")
	if err != nil {
		return "", 0, err
	}
	baseHours, err := optionalHours(req.BaseHours)
	if err != nil {
		return "", 0, err
	}
	return name, baseHours, nil
}
