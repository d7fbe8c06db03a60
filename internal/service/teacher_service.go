package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
)

type teacherShiftRepository interface {
	Assign(ctx context.Context, teacherID, shiftID int64) error
	Remove(ctx context.Context, teacherID, shiftID int64) error
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Shift, error)
}

type teacherSubjectRepository interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.AllocationDetail, error)
	FindByPair(ctx context.Context, teacherID, subjectID int64) (*models.TeacherSubjectAllocation, error)
	Create(ctx context.Context, allocation *models.TeacherSubjectAllocation) error
	UpdateBase(ctx context.Context, teacherID, subjectID int64, baseHours int) error
	Delete(ctx context.Context, teacherID, subjectID int64) error
}

// AllocationRequest registers a teacher for a subject or changes its base hours.
type AllocationRequest struct {
	SubjectID validation.Raw `json:"subject_id" validate:"omitempty,posid"`
	BaseHours validation.Raw `json:"base_hours"`
}

// TeacherService manages teachers, the shifts they work in and their subject allocations.
type TeacherService struct {
	namedService[models.Teacher]
	shifts      teacherShiftRepository
	allocations teacherSubjectRepository
}

// NewTeacherService creates a teacher service.
func NewTeacherService(repo namedRepository[models.Teacher], shifts teacherShiftRepository, allocations teacherSubjectRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	return &TeacherService{
		namedService: newNamedService(repo, "teacher", validate, logger),
		shifts:       shifts,
		allocations:  allocations,
	}
}

// AssignShift records that the teacher works in a shift.
func (s *TeacherService) AssignShift(ctx context.Context, teacherID, shiftID int64) error {
	if err := s.shifts.Assign(ctx, teacherID, shiftID); err != nil {
		return linkError(err, "teacher shift")
	}
	s.logger.Info("teacher assigned to shift", zap.Int64("teacher_id", teacherID), zap.Int64("shift_id", shiftID))
	return nil
}

// RemoveShift withdraws the teacher from a shift. It fails while schedules still place the
// teacher there.
func (s *TeacherService) RemoveShift(ctx context.Context, teacherID, shiftID int64) error {
	if err := s.shifts.Remove(ctx, teacherID, shiftID); err != nil {
		return catalogError(err, "teacher shift", "remove teacher shift")
	}
	return nil
}

// ListShifts returns the shifts a teacher works in.
func (s *TeacherService) ListShifts(ctx context.Context, teacherID int64) ([]models.Shift, error) {
	if err := s.require(ctx, teacherID); err != nil {
		return nil, err
	}
	shifts, err := s.shifts.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, catalogError(err, "teacher shift", "list teacher shifts")
	}
	return shifts, nil
}

// RegisterSubject allows the teacher to be scheduled for a subject, with a base hour bank.
func (s *TeacherService) RegisterSubject(ctx context.Context, teacherID int64, req AllocationRequest) (*models.TeacherSubjectAllocation, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	subjectID, err := validation.RequireID(req.SubjectID.String(), "subject_id")
	if err != nil {
		return nil, err
	}
	baseHours, err := optionalHours(req.BaseHours)
	if err != nil {
		return nil, err
	}

	allocation := &models.TeacherSubjectAllocation{TeacherID: teacherID, SubjectID: subjectID, BaseHours: baseHours}
	if err := s.allocations.Create(ctx, allocation); err != nil {
		return nil, linkError(err, "teacher subject")
	}
	s.logger.Info("teacher registered for subject",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("subject_id", subjectID),
		zap.Int("base_hours", baseHours))
	return allocation, nil
}

// UpdateAllocationBase changes the base hours of an allocation; scheduled hours are kept.
func (s *TeacherService) UpdateAllocationBase(ctx context.Context, teacherID, subjectID int64, req AllocationRequest) (*models.TeacherSubjectAllocation, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	baseHours, err := validation.RequireNonNegativeInt(req.BaseHours.String(), "base_hours")
	if err != nil {
		return nil, err
	}
	if err := s.allocations.UpdateBase(ctx, teacherID, subjectID, baseHours); err != nil {
		return nil, catalogError(err, "teacher subject", "update teacher subject")
	}
	allocation, err := s.allocations.FindByPair(ctx, teacherID, subjectID)
	if err != nil {
		return nil, catalogError(err, "teacher subject", "load teacher subject")
	}
	return allocation, nil
}

// RemoveSubject deletes an allocation no schedule uses anymore.
func (s *TeacherService) RemoveSubject(ctx context.Context, teacherID, subjectID int64) error {
	if err := s.allocations.Delete(ctx, teacherID, subjectID); err != nil {
		return catalogError(err, "teacher subject", "remove teacher subject")
	}
	return nil
}

// ListAllocations returns the subjects a teacher is registered for.
func (s *TeacherService) ListAllocations(ctx context.Context, teacherID int64) ([]models.AllocationDetail, error) {
	if err := s.require(ctx, teacherID); err != nil {
		return nil, err
	}
	allocations, err := s.allocations.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, catalogError(err, "teacher subject", "list teacher subjects")
	}
	return allocations, nil
}

func optionalHours(raw validation.Raw) (int, error) {
	if validation.NormalizeText(raw.String()) == "" {
		return 0, nil
	}
	return validation.RequireNonNegativeInt(raw.String(), "base_hours")
}
