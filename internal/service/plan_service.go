package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
)

type planRepository interface {
	namedRepository[models.Plan]
	LinkSubject(ctx context.Context, planID, subjectID int64) error
	UnlinkSubject(ctx context.Context, planID, subjectID int64) error
	LinkCycle(ctx context.Context, planID, cycleID int64) error
	UnlinkCycle(ctx context.Context, planID, cycleID int64) error
	ListByShift(ctx context.Context, shiftID int64) ([]models.Plan, error)
}

type cycleRepository interface {
	namedRepository[models.Cycle]
	LinkSubject(ctx context.Context, cycleID, subjectID int64) error
	UnlinkSubject(ctx context.Context, cycleID, subjectID int64) error
	ListByPlan(ctx context.Context, planID int64) ([]models.Cycle, error)
}

type shiftRepository interface {
	namedRepository[models.Shift]
	LinkPlan(ctx context.Context, shiftID, planID int64) error
	UnlinkPlan(ctx context.Context, shiftID, planID int64) error
}

// LinkRequest references the record on the other side of an association.
type LinkRequest struct {
	ID validation.Raw `json:"id" validate:"required,posid"`
}

// PlanService manages study plans and their subject and cycle links.
type PlanService struct {
	namedService[models.Plan]
	plans planRepository
}

// NewPlanService creates a plan service.
func NewPlanService(repo planRepository, validate *validator.Validate, logger *zap.Logger) *PlanService {
	return &PlanService{namedService: newNamedService[models.Plan](repo, "plan", validate, logger), plans: repo}
}

// LinkSubject adds a subject to the plan.
func (s *PlanService) LinkSubject(ctx context.Context, planID int64, req LinkRequest) error {
	subjectID, err := linkTarget(s.validator, req, "subject_id")
	if err != nil {
		return err
	}
	if err := s.plans.LinkSubject(ctx, planID, subjectID); err != nil {
		return linkError(err, "plan subject")
	}
	s.logger.Info("subject linked to plan", zap.Int64("plan_id", planID), zap.Int64("subject_id", subjectID))
	return nil
}

// UnlinkSubject removes a subject from the plan.
func (s *PlanService) UnlinkSubject(ctx context.Context, planID, subjectID int64) error {
	if err := s.plans.UnlinkSubject(ctx, planID, subjectID); err != nil {
		return catalogError(err, "plan subject", "unlink plan subject")
	}
	return nil
}

// LinkCycle offers a cycle under the plan.
func (s *PlanService) LinkCycle(ctx context.Context, planID int64, req LinkRequest) error {
	cycleID, err := linkTarget(s.validator, req, "cycle_id")
	if err != nil {
		return err
	}
	if err := s.plans.LinkCycle(ctx, planID, cycleID); err != nil {
		return linkError(err, "plan cycle")
	}
	s.logger.Info("cycle linked to plan", zap.Int64("plan_id", planID), zap.Int64("cycle_id", cycleID))
	return nil
}

// UnlinkCycle withdraws a cycle from the plan. Divisions built on the pair keep it alive.
func (s *PlanService) UnlinkCycle(ctx context.Context, planID, cycleID int64) error {
	if err := s.plans.UnlinkCycle(ctx, planID, cycleID); err != nil {
		return catalogError(err, "plan cycle", "unlink plan cycle")
	}
	return nil
}

// ListByShift returns the plans offered in a shift.
func (s *PlanService) ListByShift(ctx context.Context, shiftID int64) ([]models.Plan, error) {
	plans, err := s.plans.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, catalogError(err, "plan", "list shift plans")
	}
	return plans, nil
}

// CycleService manages cycles and their subject obligations.
type CycleService struct {
	namedService[models.Cycle]
	cycles cycleRepository
}

// NewCycleService creates a cycle service.
func NewCycleService(repo cycleRepository, validate *validator.Validate, logger *zap.Logger) *CycleService {
	return &CycleService{namedService: newNamedService[models.Cycle](repo, "cycle", validate, logger), cycles: repo}
}

// LinkSubject records a subject obligation of the cycle.
func (s *CycleService) LinkSubject(ctx context.Context, cycleID int64, req LinkRequest) error {
	subjectID, err := linkTarget(s.validator, req, "subject_id")
	if err != nil {
		return err
	}
	if err := s.cycles.LinkSubject(ctx, cycleID, subjectID); err != nil {
		return linkError(err, "cycle subject")
	}
	s.logger.Info("subject linked to cycle", zap.Int64("cycle_id", cycleID), zap.Int64("subject_id", subjectID))
	return nil
}

func (s *CycleService) UnlinkSubject(ctx context.Context, cycleID, subjectID int64) error {
	if err := s.cycles.UnlinkSubject(ctx, cycleID, subjectID); err != nil {
		return catalogError(err, "cycle subject", "unlink cycle subject")
	}
	return nil
}

// ListByPlan returns the cycles offered under a plan.
func (s *CycleService) ListByPlan(ctx context.Context, planID int64) ([]models.Cycle, error) {
	cycles, err := s.cycles.ListByPlan(ctx, planID)
	if err != nil {
		return nil, catalogError(err, "cycle", "list plan cycles")
	}
	return cycles, nil
}

// ShiftService manages shifts and the plans they offer.
type ShiftService struct {
	namedService[models.Shift]
	shifts shiftRepository
}

// NewShiftService creates a shift service.
func NewShiftService(repo shiftRepository, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	return &ShiftService{namedService: newNamedService[models.Shift](repo, "shift", validate, logger), shifts: repo}
}

// LinkPlan offers a plan in the shift.
func (s *ShiftService) LinkPlan(ctx context.Context, shiftID int64, req LinkRequest) error {
	planID, err := linkTarget(s.validator, req, "plan_id")
	if err != nil {
		return err
	}
	if err := s.shifts.LinkPlan(ctx, shiftID, planID); err != nil {
		return linkError(err, "shift plan")
	}
	s.logger.Info("plan linked to shift", zap.Int64("shift_id", shiftID), zap.Int64("plan_id", planID))
	return nil
}

func (s *ShiftService) UnlinkPlan(ctx context.Context, shiftID, planID int64) error {
	if err := s.shifts.UnlinkPlan(ctx, shiftID, planID); err != nil {
		return catalogError(err, "shift plan", "unlink shift plan")
	}
	return nil
}

func linkTarget(validate *validator.Validate, req LinkRequest, field string) (int64, error) {
	if err := validation.Struct(validate, req); err != nil {
		return 0, err
	}
	return validation.RequireID(req.ID.String(), field)
}
