package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Schedule, error)
	FindDetailByID(ctx context.Context, id int64) (*models.ScheduleDetail, error)
	ListByDivision(ctx context.Context, divisionID int64) ([]models.ScheduleDetail, error)
	ListByTeacher(ctx context.Context, teacherID, shiftID int64) ([]models.ScheduleDetail, error)
	FindDivisionSlot(ctx context.Context, exec sqlx.ExtContext, divisionID int64, day string, slot int) (*models.Schedule, error)
	FindTeacherSlot(ctx context.Context, exec sqlx.ExtContext, q models.ScheduleSlotQuery) (*models.Schedule, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type divisionFinder interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Division, error)
}

type existenceChecker interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error)
}

type pairChecker interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, left, right int64) (bool, error)
}

// ScheduleStores groups the repositories the assignment engine reads and writes.
type ScheduleStores struct {
	Tx            txProvider
	Schedules     scheduleRepository
	Divisions     divisionFinder
	Teachers      existenceChecker
	Subjects      existenceChecker
	Shifts        existenceChecker
	TeacherShifts pairChecker
	Allocations   pairChecker
	Counters      counterStore
}

// ScheduleServiceConfig tunes the engine.
type ScheduleServiceConfig struct {
	// MaxSlots bounds slot numbers; zero or less leaves them unbounded.
	MaxSlots int
	CacheTTL time.Duration
}

// CreateForDivisionRequest places a subject and optional teacher in a division's slot.
type CreateForDivisionRequest struct {
	DivisionID validation.Raw `json:"division_id" validate:"required,posid"`
	Day        validation.Raw `json:"day" validate:"required,weekday"`
	Slot       validation.Raw `json:"slot" validate:"required"`
	StartTime  validation.Raw `json:"start_time" validate:"omitempty,hhmm"`
	EndTime    validation.Raw `json:"end_time" validate:"omitempty,hhmm"`
	SubjectID  validation.Raw `json:"subject_id" validate:"omitempty,posid"`
	TeacherID  validation.Raw `json:"teacher_id" validate:"omitempty,posid"`
	ShiftID    validation.Raw `json:"shift_id" validate:"omitempty,posid"`
}

// CreateForTeacherRequest places a teacher in a shift slot, optionally inside a division.
type CreateForTeacherRequest struct {
	TeacherID  validation.Raw `json:"teacher_id" validate:"required,posid"`
	ShiftID    validation.Raw `json:"shift_id" validate:"required,posid"`
	Day        validation.Raw `json:"day" validate:"required,weekday"`
	Slot       validation.Raw `json:"slot" validate:"required"`
	StartTime  validation.Raw `json:"start_time" validate:"omitempty,hhmm"`
	EndTime    validation.Raw `json:"end_time" validate:"omitempty,hhmm"`
	DivisionID validation.Raw `json:"division_id" validate:"omitempty,posid"`
	SubjectID  validation.Raw `json:"subject_id" validate:"omitempty,posid"`
}

const (
	opCreateForDivision = "create_for_division"
	opCreateForTeacher  = "create_for_teacher"
	opDelete            = "delete"

	schedulesCachePattern = "schedules:*"
)

const (
	msgDivisionSlot         = "slot already assigned for this division"
	msgTeacherOtherDivision = "teacher already assigned in another division in this shift/day/slot"
	msgTeacherSlot          = "teacher already has an assignment in this day/slot/shift"
	msgTeacherSubject       = "teacher not registered for this subject"
	msgTeacherShift         = "teacher not assigned to this shift"
	msgCrossShift           = "division belongs to a different shift"
)

// ScheduleService is the assignment engine: the only path that creates or deletes
// schedule rows, and therefore the only writer of the derived hour counters.
type ScheduleService struct {
	stores    ScheduleStores
	counters  counterMaintainer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleServiceConfig
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(stores ScheduleStores, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ScheduleServiceConfig) *ScheduleService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		stores:    stores,
		counters:  counterMaintainer{store: stores.Counters},
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateForDivision assigns a slot of a division. The shift defaults to the division's own.
func (s *ScheduleService) CreateForDivision(ctx context.Context, req CreateForDivisionRequest) (result *models.Schedule, err error) {
	started := time.Now()
	defer func() { s.observe(opCreateForDivision, started, err) }()

	if err = validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	divisionID, err := validation.RequireID(req.DivisionID.String(), "division_id")
	if err != nil {
		return nil, err
	}
	sched, err := s.parseSlot(req.Day, req.Slot, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	sched.DivisionID = &divisionID
	if sched.SubjectID, err = validation.OptionalID(req.SubjectID.String(), "subject_id"); err != nil {
		return nil, err
	}
	if sched.TeacherID, err = validation.OptionalID(req.TeacherID.String(), "teacher_id"); err != nil {
		return nil, err
	}
	shiftID, err := validation.OptionalID(req.ShiftID.String(), "shift_id")
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		division, err := s.loadDivision(ctx, tx, divisionID)
		if err != nil {
			return err
		}
		sched.ShiftID = division.ShiftID
		if shiftID != nil && *shiftID != division.ShiftID {
			return conflictError(models.ConflictCrossShift, msgCrossShift, &models.Schedule{DivisionID: &divisionID, ShiftID: *shiftID, Day: sched.Day, Slot: sched.Slot})
		}

		if sched.TeacherID != nil {
			if err := s.requireEntity(ctx, tx, s.stores.Teachers, *sched.TeacherID, "teacher"); err != nil {
				return err
			}
			busy, err := s.stores.Schedules.FindTeacherSlot(ctx, tx, models.ScheduleSlotQuery{
				Day: sched.Day, Slot: sched.Slot, TeacherID: *sched.TeacherID, ShiftID: sched.ShiftID, ExcludeDivisionID: divisionID,
			})
			if err != nil {
				return internalError(err, "failed to check teacher availability")
			}
			if busy != nil {
				return conflictError(models.ConflictTeacherSlot, msgTeacherOtherDivision, busy)
			}
		}
		if sched.SubjectID != nil {
			if err := s.requireEntity(ctx, tx, s.stores.Subjects, *sched.SubjectID, "subject"); err != nil {
				return err
			}
		}
		if err := s.checkAllocation(ctx, tx, sched); err != nil {
			return err
		}
		if sched.TeacherID != nil {
			if err := s.checkTeacherShift(ctx, tx, sched); err != nil {
				return err
			}
		}
		if err := s.checkDivisionSlot(ctx, tx, sched); err != nil {
			return err
		}
		return s.insert(ctx, tx, sched, msgTeacherOtherDivision)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule created for division",
		zap.Int64("schedule_id", sched.ID),
		zap.Int64("division_id", divisionID),
		zap.String("day", sched.Day),
		zap.Int("slot", sched.Slot))
	s.invalidate(ctx)
	return sched, nil
}

// CreateForTeacher assigns a teacher to a shift slot, optionally inside a division.
func (s *ScheduleService) CreateForTeacher(ctx context.Context, req CreateForTeacherRequest) (result *models.Schedule, err error) {
	started := time.Now()
	defer func() { s.observe(opCreateForTeacher, started, err) }()

	if err = validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	teacherID, err := validation.RequireID(req.TeacherID.String(), "teacher_id")
	if err != nil {
		return nil, err
	}
	shiftID, err := validation.RequireID(req.ShiftID.String(), "shift_id")
	if err != nil {
		return nil, err
	}
	sched, err := s.parseSlot(req.Day, req.Slot, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	sched.TeacherID = &teacherID
	sched.ShiftID = shiftID
	if sched.DivisionID, err = validation.OptionalID(req.DivisionID.String(), "division_id"); err != nil {
		return nil, err
	}
	if sched.SubjectID, err = validation.OptionalID(req.SubjectID.String(), "subject_id"); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireEntity(ctx, tx, s.stores.Teachers, teacherID, "teacher"); err != nil {
			return err
		}
		if err := s.requireEntity(ctx, tx, s.stores.Shifts, shiftID, "shift"); err != nil {
			return err
		}
		if err := s.checkTeacherShift(ctx, tx, sched); err != nil {
			return err
		}
		if sched.SubjectID != nil {
			if err := s.requireEntity(ctx, tx, s.stores.Subjects, *sched.SubjectID, "subject"); err != nil {
				return err
			}
			if err := s.checkAllocation(ctx, tx, sched); err != nil {
				return err
			}
		}
		if sched.DivisionID != nil {
			division, err := s.loadDivision(ctx, tx, *sched.DivisionID)
			if err != nil {
				return err
			}
			if division.ShiftID != shiftID {
				return conflictError(models.ConflictCrossShift, msgCrossShift, sched)
			}
			if err := s.checkDivisionSlot(ctx, tx, sched); err != nil {
				return err
			}
		}
		busy, err := s.stores.Schedules.FindTeacherSlot(ctx, tx, models.ScheduleSlotQuery{
			Day: sched.Day, Slot: sched.Slot, TeacherID: teacherID, ShiftID: shiftID,
		})
		if err != nil {
			return internalError(err, "failed to check teacher availability")
		}
		if busy != nil {
			return conflictError(models.ConflictTeacherSlot, msgTeacherSlot, busy)
		}
		return s.insert(ctx, tx, sched, msgTeacherSlot)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule created for teacher",
		zap.Int64("schedule_id", sched.ID),
		zap.Int64("teacher_id", teacherID),
		zap.Int64("shift_id", shiftID),
		zap.String("day", sched.Day),
		zap.Int("slot", sched.Slot))
	s.invalidate(ctx)
	return sched, nil
}

// Delete removes a schedule and reverses its counter increments.
func (s *ScheduleService) Delete(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { s.observe(opDelete, started, err) }()

	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "schedule_id must be a positive integer")
	}

	var removed *models.Schedule
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		sched, err := s.stores.Schedules.FindByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			}
			return internalError(err, "failed to load schedule")
		}
		if err := s.counters.apply(ctx, tx, sched, -1); err != nil {
			return internalError(err, "failed to update hour counters")
		}
		if err := s.stores.Schedules.Delete(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			}
			return internalError(err, "failed to delete schedule")
		}
		removed = sched
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("schedule deleted", zap.Int64("schedule_id", id), zap.String("day", removed.Day), zap.Int("slot", removed.Slot))
	s.invalidate(ctx)
	return nil
}

// Get returns one schedule with display names.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.ScheduleDetail, error) {
	sched, err := s.stores.Schedules.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, internalError(err, "failed to load schedule")
	}
	return sched, nil
}

// ListForDivision returns a division's timetable ordered by weekday and slot.
func (s *ScheduleService) ListForDivision(ctx context.Context, divisionID int64) ([]models.ScheduleDetail, error) {
	if divisionID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "division_id must be a positive integer")
	}
	key := fmt.Sprintf("schedules:division:%d", divisionID)
	return s.cachedList(ctx, key, func() ([]models.ScheduleDetail, error) {
		return s.stores.Schedules.ListByDivision(ctx, divisionID)
	})
}

// ListForTeacher returns a teacher's timetable within one shift.
func (s *ScheduleService) ListForTeacher(ctx context.Context, teacherID, shiftID int64) ([]models.ScheduleDetail, error) {
	if teacherID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id must be a positive integer")
	}
	if shiftID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "shift_id must be a positive integer")
	}
	key := fmt.Sprintf("schedules:teacher:%d:shift:%d", teacherID, shiftID)
	return s.cachedList(ctx, key, func() ([]models.ScheduleDetail, error) {
		return s.stores.Schedules.ListByTeacher(ctx, teacherID, shiftID)
	})
}

func (s *ScheduleService) cachedList(ctx context.Context, key string, load func() ([]models.ScheduleDetail, error)) ([]models.ScheduleDetail, error) {
	var cached []models.ScheduleDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	schedules, err := load()
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}
	_ = s.cache.Set(ctx, key, schedules, s.cfg.CacheTTL)
	return schedules, nil
}

func (s *ScheduleService) parseSlot(day, slot, start, end validation.Raw) (*models.Schedule, error) {
	normalizedDay, err := validation.NormalizeDay(day.String())
	if err != nil {
		return nil, err
	}
	normalizedSlot, err := validation.NormalizeSlot(slot.String(), s.cfg.MaxSlots)
	if err != nil {
		return nil, err
	}
	startTime, err := validation.OptionalTime(start.String(), "start_time")
	if err != nil {
		return nil, err
	}
	endTime, err := validation.OptionalTime(end.String(), "end_time")
	if err != nil {
		return nil, err
	}
	if err := validation.EnsureTimeOrder(startTime, endTime); err != nil {
		return nil, err
	}
	return &models.Schedule{Day: normalizedDay, Slot: normalizedSlot, StartTime: startTime, EndTime: endTime}, nil
}

func (s *ScheduleService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.stores.Tx.BeginTxx(ctx, nil)
	if err != nil {
		return internalError(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return internalError(err, "failed to commit schedule transaction")
	}
	return nil
}

func (s *ScheduleService) loadDivision(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Division, error) {
	division, err := s.stores.Divisions.FindByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "division not found")
		}
		return nil, internalError(err, "failed to load division")
	}
	return division, nil
}

func (s *ScheduleService) requireEntity(ctx context.Context, exec sqlx.ExtContext, repo existenceChecker, id int64, noun string) error {
	found, err := repo.Exists(ctx, exec, id)
	if err != nil {
		return internalError(err, fmt.Sprintf("failed to load %s", noun))
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, noun+" not found")
	}
	return nil
}

func (s *ScheduleService) checkAllocation(ctx context.Context, exec sqlx.ExtContext, sched *models.Schedule) error {
	if sched.TeacherID == nil || sched.SubjectID == nil {
		return nil
	}
	found, err := s.stores.Allocations.Exists(ctx, exec, *sched.TeacherID, *sched.SubjectID)
	if err != nil {
		return internalError(err, "failed to check teacher subjects")
	}
	if !found {
		return conflictError(models.ConflictTeacherSubject, msgTeacherSubject, sched)
	}
	return nil
}

func (s *ScheduleService) checkTeacherShift(ctx context.Context, exec sqlx.ExtContext, sched *models.Schedule) error {
	found, err := s.stores.TeacherShifts.Exists(ctx, exec, *sched.TeacherID, sched.ShiftID)
	if err != nil {
		return internalError(err, "failed to check teacher shifts")
	}
	if !found {
		return conflictError(models.ConflictTeacherShift, msgTeacherShift, sched)
	}
	return nil
}

func (s *ScheduleService) checkDivisionSlot(ctx context.Context, exec sqlx.ExtContext, sched *models.Schedule) error {
	taken, err := s.stores.Schedules.FindDivisionSlot(ctx, exec, *sched.DivisionID, sched.Day, sched.Slot)
	if err != nil {
		return internalError(err, "failed to check division slot")
	}
	if taken != nil {
		return conflictError(models.ConflictDivisionSlot, msgDivisionSlot, taken)
	}
	return nil
}

// insert stores sched and bumps its counters. Constraint violations caught by the store
// map to the same conflicts the pre-checks report.
func (s *ScheduleService) insert(ctx context.Context, tx *sqlx.Tx, sched *models.Schedule, teacherSlotMessage string) error {
	if err := s.stores.Schedules.Insert(ctx, tx, sched); err != nil {
		return storeConflict(err, sched, teacherSlotMessage)
	}
	if err := s.counters.apply(ctx, tx, sched, 1); err != nil {
		return internalError(err, "failed to update hour counters")
	}
	return nil
}

func storeConflict(err error, sched *models.Schedule, teacherSlotMessage string) error {
	switch {
	case errors.Is(err, database.ErrDuplicate):
		switch database.ConstraintName(err) {
		case database.ConstraintScheduleDivisionSlot:
			return conflictError(models.ConflictDivisionSlot, msgDivisionSlot, sched)
		case database.ConstraintScheduleTeacherSlot:
			return conflictError(models.ConflictTeacherSlot, teacherSlotMessage, sched)
		}
		return conflictError(models.ConflictDuplicate, "schedule already exists", sched)
	case errors.Is(err, database.ErrForeignKey):
		switch database.ConstraintName(err) {
		case database.ConstraintScheduleAllocation:
			return conflictError(models.ConflictTeacherSubject, msgTeacherSubject, sched)
		case database.ConstraintScheduleTeacherShift:
			return conflictError(models.ConflictTeacherShift, msgTeacherShift, sched)
		case database.ConstraintScheduleDivisionShift:
			return conflictError(models.ConflictCrossShift, msgCrossShift, sched)
		}
		return conflictError(models.ConflictReference, "schedule references a missing record", sched)
	case errors.Is(err, database.ErrCheck):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "schedule values rejected by the store")
	}
	return internalError(err, "failed to create schedule")
}

func conflictError(dimension, message string, sched *models.Schedule) error {
	conflict := models.ScheduleConflict{Dimension: dimension}
	if sched != nil {
		conflict.ScheduleID = sched.ID
		conflict.DivisionID = sched.DivisionID
		conflict.TeacherID = sched.TeacherID
		conflict.ShiftID = sched.ShiftID
		conflict.Day = sched.Day
		conflict.Slot = sched.Slot
	}
	domainErr := &models.ScheduleConflictError{Type: dimension, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

func internalError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *ScheduleService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, schedulesCachePattern)
}

func (s *ScheduleService) observe(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		appErr := appErrors.FromError(err)
		switch appErr.Code {
		case appErrors.ErrConflict.Code:
			outcome = OutcomeConflict
			var domainErr *models.ScheduleConflictError
			if errors.As(err, &domainErr) {
				s.metrics.RecordConflict(domainErr.Conflict.Dimension)
			}
			s.logger.Debug("schedule rejected", zap.String("operation", operation), zap.String("reason", appErr.Message))
		case appErrors.ErrValidation.Code, appErrors.ErrNotFound.Code:
			outcome = OutcomeInvalid
			s.logger.Debug("schedule input rejected", zap.String("operation", operation), zap.String("reason", appErr.Message))
		default:
			outcome = OutcomeError
			s.logger.Error("schedule mutation failed", zap.String("operation", operation), zap.Error(err))
		}
	}
	s.metrics.ObserveScheduleMutation(operation, outcome, time.Since(started))
}
