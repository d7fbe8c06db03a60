package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

type divisionRepository interface {
	List(ctx context.Context, filter models.DivisionFilter) ([]models.DivisionDetail, error)
	FindDetailByID(ctx context.Context, id int64) (*models.DivisionDetail, error)
	Create(ctx context.Context, division *models.Division) error
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type shiftPlanChecker interface {
	HasPlan(ctx context.Context, shiftID, planID int64) (bool, error)
}

type planCycleChecker interface {
	HasCycle(ctx context.Context, planID, cycleID int64) (bool, error)
}

// DivisionStores groups the lookups division workflows depend on.
type DivisionStores struct {
	Divisions divisionRepository
	Shifts    existenceChecker
	Plans     existenceChecker
	Cycles    existenceChecker
	ShiftPlan shiftPlanChecker
	PlanCycle planCycleChecker
}

// DivisionRequest creates a division.
type DivisionRequest struct {
	Name    validation.Raw `json:"name" validate:"required,max=120"`
	ShiftID validation.Raw `json:"shift_id" validate:"required,posid"`
	PlanID  validation.Raw `json:"plan_id" validate:"required,posid"`
	CycleID validation.Raw `json:"cycle_id" validate:"required,posid"`
}

// DivisionService manages class sections.
type DivisionService struct {
	stores    DivisionStores
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDivisionService creates a division service.
func NewDivisionService(stores DivisionStores, validate *validator.Validate, logger *zap.Logger) *DivisionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DivisionService{stores: stores, validator: validate, logger: logger}
}

// List returns divisions narrowed by filter.
func (s *DivisionService) List(ctx context.Context, filter models.DivisionFilter) ([]models.DivisionDetail, error) {
	divisions, err := s.stores.Divisions.List(ctx, filter)
	if err != nil {
		return nil, catalogError(err, "division", "list divisions")
	}
	return divisions, nil
}

// Get returns a division with its shift, plan and cycle names.
func (s *DivisionService) Get(ctx context.Context, id int64) (*models.DivisionDetail, error) {
	division, err := s.stores.Divisions.FindDetailByID(ctx, id)
	if err != nil {
		return nil, catalogError(err, "division", "load division")
	}
	return division, nil
}

// Create validates the shift, plan and cycle combination and stores the division. The plan
// must be offered in the shift and the cycle must belong to the plan.
func (s *DivisionService) Create(ctx context.Context, req DivisionRequest) (*models.DivisionDetail, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	name, err := validation.RequireText(req.Name.String(), "name")
	if err != nil {
		return nil, err
	}
	shiftID, err := validation.RequireID(req.ShiftID.String(), "shift_id")
	if err != nil {
		return nil, err
	}
	planID, err := validation.RequireID(req.PlanID.String(), "plan_id")
	if err != nil {
		return nil, err
	}
	cycleID, err := validation.RequireID(req.CycleID.String(), "cycle_id")
	if err != nil {
		return nil, err
	}

	if err := s.exists(ctx, s.stores.Shifts, shiftID, "shift"); err != nil {
		return nil, err
	}
	if err := s.exists(ctx, s.stores.Plans, planID, "plan"); err != nil {
		return nil, err
	}
	if err := s.exists(ctx, s.stores.Cycles, cycleID, "cycle"); err != nil {
		return nil, err
	}

	offered, err := s.stores.ShiftPlan.HasPlan(ctx, shiftID, planID)
	if err != nil {
		return nil, catalogError(err, "shift plan", "check shift plan")
	}
	if !offered {
		return nil, appErrors.Clone(appErrors.ErrConflict, "plan is not offered in this shift")
	}
	linked, err := s.stores.PlanCycle.HasCycle(ctx, planID, cycleID)
	if err != nil {
		return nil, catalogError(err, "plan cycle", "check plan cycle")
	}
	if !linked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cycle does not belong to this plan")
	}

	division := &models.Division{Name: name, ShiftID: shiftID, PlanID: planID, CycleID: cycleID}
	if err := s.stores.Divisions.Create(ctx, division); err != nil {
		return nil, catalogError(err, "division", "create division")
	}
	s.logger.Info("division created",
		zap.Int64("id", division.ID),
		zap.String("name", name),
		zap.Int64("shift_id", shiftID),
		zap.Int64("plan_id", planID),
		zap.Int64("cycle_id", cycleID))
	return s.Get(ctx, division.ID)
}

// Rename changes the division name.
func (s *DivisionService) Rename(ctx context.Context, id int64, req NameRequest) (*models.DivisionDetail, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	name, err := validation.RequireText(req.Name.String(), "name")
	if err != nil {
		return nil, err
	}
	if err := s.stores.Divisions.Rename(ctx, id, name); err != nil {
		return nil, catalogError(err, "division", "update division")
	}
	return s.Get(ctx, id)
}

// Delete removes a division without schedules.
func (s *DivisionService) Delete(ctx context.Context, id int64) error {
	if err := s.stores.Divisions.Delete(ctx, id); err != nil {
		return catalogError(err, "division", "delete division")
	}
	s.logger.Info("division deleted", zap.Int64("id", id))
	return nil
}

func (s *DivisionService) exists(ctx context.Context, checker existenceChecker, id int64, noun string) error {
	found, err := checker.Exists(ctx, nil, id)
	if err != nil {
		return catalogError(err, noun, "load "+noun)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, noun+" not found")
	}
	return nil
}
