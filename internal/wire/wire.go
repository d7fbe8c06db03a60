// Package wire assembles repositories and services over one database handle.
package wire

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/handler"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
)

// Options tunes the assembled services. Zero values are usable.
type Options struct {
	MaxSlots int
	CacheTTL time.Duration
	Cache    *service.CacheService
	Metrics  *service.MetricsService
	Logger   *zap.Logger
}

// Container holds the services of one process.
type Container struct {
	DB        *sqlx.DB
	Validator *validator.Validate

	Subjects  *service.SubjectService
	Teachers  *service.TeacherService
	Plans     *service.PlanService
	Cycles    *service.CycleService
	Shifts    *service.ShiftService
	Divisions *service.DivisionService
	Schedules *service.ScheduleService
	Exports   *service.ExportService
	Audit     *service.CounterAuditService
}

// Build wires every repository and service to db.
func Build(db *sqlx.DB, opts Options) *Container {
	logr := opts.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	validate := validation.New()

	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	teacherShiftRepo := repository.NewTeacherShiftRepository(db)
	allocationRepo := repository.NewTeacherSubjectRepository(db)
	planRepo := repository.NewPlanRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	c := &Container{DB: db, Validator: validate}
	c.Subjects = service.NewSubjectService(subjectRepo, validate, logr.Named("subjects"))
	c.Teachers = service.NewTeacherService(teacherRepo, teacherShiftRepo, allocationRepo, validate, logr.Named("teachers"))
	c.Plans = service.NewPlanService(planRepo, validate, logr.Named("plans"))
	c.Cycles = service.NewCycleService(cycleRepo, validate, logr.Named("cycles"))
	c.Shifts = service.NewShiftService(shiftRepo, validate, logr.Named("shifts"))
	c.Divisions = service.NewDivisionService(service.DivisionStores{
		Divisions: divisionRepo,
		Shifts:    shiftRepo,
		Plans:     planRepo,
		Cycles:    cycleRepo,
		ShiftPlan: shiftRepo,
		PlanCycle: planRepo,
	}, validate, logr.Named("divisions"))
	c.Schedules = service.NewScheduleService(service.ScheduleStores{
		Tx:            db,
		Schedules:     scheduleRepo,
		Divisions:     divisionRepo,
		Teachers:      teacherRepo,
		Subjects:      subjectRepo,
		Shifts:        shiftRepo,
		TeacherShifts: teacherShiftRepo,
		Allocations:   allocationRepo,
		Counters:      counterRepo,
	}, opts.Cache, opts.Metrics, validate, logr.Named("schedules"), service.ScheduleServiceConfig{
		MaxSlots: opts.MaxSlots,
		CacheTTL: opts.CacheTTL,
	})
	c.Exports = service.NewExportService(c.Schedules, c.Divisions, c.Teachers, c.Shifts,
		service.ExportConfig{Slots: opts.MaxSlots}, logr.Named("export"), nil, nil)
	c.Audit = service.NewCounterAuditService(counterRepo, logr.Named("audit"))
	return c
}

// Handlers builds the HTTP handlers over the container's services.
func (c *Container) Handlers() handler.Handlers {
	return handler.Handlers{
		Subjects:    handler.NewSubjectHandler(c.Subjects),
		Teachers:    handler.NewTeacherHandler(c.Teachers),
		Plans:       handler.NewPlanHandler(c.Plans, c.Cycles, c.Subjects),
		Cycles:      handler.NewCycleHandler(c.Cycles, c.Subjects),
		Shifts:      handler.NewShiftHandler(c.Shifts, c.Plans),
		Divisions:   handler.NewDivisionHandler(c.Divisions),
		Schedules:   handler.NewScheduleHandler(c.Schedules),
		Timetables:  handler.NewTimetableHandler(c.Exports),
		Maintenance: handler.NewMaintenanceHandler(c.Audit),
	}
}
