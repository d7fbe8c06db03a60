package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// timetableFixture seeds: shifts Afternoon and Morning offering plan Sciences with cycle 1st;
// divisions 1A and 1B (Afternoon) and 1M (Morning); subjects Biology (3h) and Chemistry (2h);
// teachers Maria (Afternoon, Biology 3h) and Pedro (Afternoon, Biology 0h).
type timetableFixture struct {
	db          *sqlx.DB
	schedules   *repository.ScheduleRepository
	subjects    *repository.SubjectRepository
	allocations *repository.TeacherSubjectRepository
	counters    *repository.CounterRepository
	stores      ScheduleStores

	afternoon, morning  int64
	plan, cycle         int64
	div1A, div1B, div1M int64
	biology, chemistry  int64
	maria, pedro        int64
}

func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	must := func(id int64, err error) int64 {
		require.NoError(t, err)
		return id
	}

	shifts := repository.NewShiftRepository(db)
	plans := repository.NewPlanRepository(db)
	cycles := repository.NewCycleRepository(db)
	teachers := repository.NewTeacherRepository(db)
	teacherShifts := repository.NewTeacherShiftRepository(db)
	divisions := repository.NewDivisionRepository(db)

	f := &timetableFixture{
		db:          db,
		schedules:   repository.NewScheduleRepository(db),
		subjects:    repository.NewSubjectRepository(db),
		allocations: repository.NewTeacherSubjectRepository(db),
		counters:    repository.NewCounterRepository(db),
	}

	f.afternoon = must(shifts.Create(ctx, "Afternoon"))
	f.morning = must(shifts.Create(ctx, "Morning"))
	f.plan = must(plans.Create(ctx, "Sciences"))
	f.cycle = must(cycles.Create(ctx, "1st"))
	require.NoError(t, plans.LinkCycle(ctx, f.plan, f.cycle))
	require.NoError(t, shifts.LinkPlan(ctx, f.afternoon, f.plan))
	require.NoError(t, shifts.LinkPlan(ctx, f.morning, f.plan))

	biology := &models.Subject{Name: "Biology", BaseHours: 3}
	require.NoError(t, f.subjects.Create(ctx, biology))
	chemistry := &models.Subject{Name: "Chemistry", BaseHours: 2}
	require.NoError(t, f.subjects.Create(ctx, chemistry))
	f.biology, f.chemistry = biology.ID, chemistry.ID
	require.NoError(t, plans.LinkSubject(ctx, f.plan, f.biology))

	for name, target := range map[string]*int64{"1A": &f.div1A, "1B": &f.div1B} {
		division := &models.Division{Name: name, ShiftID: f.afternoon, PlanID: f.plan, CycleID: f.cycle}
		require.NoError(t, divisions.Create(ctx, division))
		*target = division.ID
	}
	morningDivision := &models.Division{Name: "1M", ShiftID: f.morning, PlanID: f.plan, CycleID: f.cycle}
	require.NoError(t, divisions.Create(ctx, morningDivision))
	f.div1M = morningDivision.ID

	f.maria = must(teachers.Create(ctx, "Maria"))
	f.pedro = must(teachers.Create(ctx, "Pedro"))
	require.NoError(t, teacherShifts.Assign(ctx, f.maria, f.afternoon))
	require.NoError(t, teacherShifts.Assign(ctx, f.pedro, f.afternoon))
	require.NoError(t, f.allocations.Create(ctx, &models.TeacherSubjectAllocation{TeacherID: f.maria, SubjectID: f.biology, BaseHours: 3}))
	require.NoError(t, f.allocations.Create(ctx, &models.TeacherSubjectAllocation{TeacherID: f.pedro, SubjectID: f.biology}))

	f.stores = ScheduleStores{
		Tx:            db,
		Schedules:     f.schedules,
		Divisions:     divisions,
		Teachers:      teachers,
		Subjects:      f.subjects,
		Shifts:        shifts,
		TeacherShifts: teacherShifts,
		Allocations:   f.allocations,
		Counters:      f.counters,
	}
	return f
}

func (f *timetableFixture) service(cache *CacheService, metrics *MetricsService) *ScheduleService {
	return NewScheduleService(f.stores, cache, metrics, nil, zap.NewNop(), ScheduleServiceConfig{MaxSlots: 8})
}

func (f *timetableFixture) weeklyHours(t *testing.T, subjectID int64) int {
	t.Helper()
	subject, err := f.subjects.FindByID(context.Background(), nil, subjectID)
	require.NoError(t, err)
	return subject.WeeklyHours
}

func (f *timetableFixture) allocatedHours(t *testing.T, teacherID, subjectID int64) int {
	t.Helper()
	allocation, err := f.allocations.FindByPair(context.Background(), teacherID, subjectID)
	require.NoError(t, err)
	return allocation.AllocatedHours
}

func (f *timetableFixture) scheduleCount(t *testing.T) int {
	t.Helper()
	count, err := f.schedules.CountAll(context.Background())
	require.NoError(t, err)
	return count
}

func raw(id int64) validation.Raw {
	return validation.Raw(strconv.FormatInt(id, 10))
}

func (f *timetableFixture) mondayFirstSlot() CreateForDivisionRequest {
	return CreateForDivisionRequest{
		DivisionID: raw(f.div1A),
		Day:        "Monday",
		Slot:       "1",
		StartTime:  "08:00",
		EndTime:    "09:00",
		SubjectID:  raw(f.biology),
		TeacherID:  raw(f.maria),
		ShiftID:    raw(f.afternoon),
	}
}

func requireConflict(t *testing.T, err error, dimension, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, dimension, conflictErr.Conflict.Dimension)
}

func TestCreateForDivisionUpdatesCounters(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)

	sched, err := svc.CreateForDivision(context.Background(), f.mondayFirstSlot())
	require.NoError(t, err)
	assert.Positive(t, sched.ID)
	assert.Equal(t, f.afternoon, sched.ShiftID)
	assert.Equal(t, "Monday", sched.Day)
	require.NotNil(t, sched.StartTime)
	assert.Equal(t, "08:00", *sched.StartTime)

	assert.Equal(t, 4, f.weeklyHours(t, f.biology))
	assert.Equal(t, 4, f.allocatedHours(t, f.maria, f.biology))
}

func TestCreateForDivisionRejectsRepeatedSlot(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	_, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	_, err = svc.CreateForDivision(ctx, f.mondayFirstSlot())
	requireConflict(t, err, models.ConflictDivisionSlot, "slot already assigned for this division")

	assert.Equal(t, 1, f.scheduleCount(t))
	assert.Equal(t, 4, f.weeklyHours(t, f.biology))
	assert.Equal(t, 4, f.allocatedHours(t, f.maria, f.biology))
}

func TestCreateForTeacherRejectsBusyTeacher(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	_, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	req := CreateForTeacherRequest{
		TeacherID: raw(f.maria),
		ShiftID:   raw(f.afternoon),
		Day:       "Monday",
		Slot:      "1",
	}

	t.Run("another division", func(t *testing.T) {
		withDivision := req
		withDivision.DivisionID = raw(f.div1B)
		_, err := svc.CreateForTeacher(ctx, withDivision)
		requireConflict(t, err, models.ConflictTeacherSlot, "teacher already has an assignment in this day/slot/shift")
	})

	t.Run("no division", func(t *testing.T) {
		_, err := svc.CreateForTeacher(ctx, req)
		requireConflict(t, err, models.ConflictTeacherSlot, "teacher already has an assignment in this day/slot/shift")
	})

	t.Run("same division reports the division slot first", func(t *testing.T) {
		sameDivision := req
		sameDivision.DivisionID = raw(f.div1A)
		_, err := svc.CreateForTeacher(ctx, sameDivision)
		requireConflict(t, err, models.ConflictDivisionSlot, "slot already assigned for this division")
	})

	assert.Equal(t, 1, f.scheduleCount(t))
}

func TestCreateForDivisionRejectsTeacherBookedElsewhere(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	_, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	other := f.mondayFirstSlot()
	other.DivisionID = raw(f.div1B)
	_, err = svc.CreateForDivision(ctx, other)
	requireConflict(t, err, models.ConflictTeacherSlot, "teacher already assigned in another division in this shift/day/slot")

	// a different teacher may take the same slot in 1B
	other.TeacherID = raw(f.pedro)
	_, err = svc.CreateForDivision(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 5, f.weeklyHours(t, f.biology))
	assert.Equal(t, 1, f.allocatedHours(t, f.pedro, f.biology))
}

func TestDeleteRestoresCounters(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	sched, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sched.ID))
	assert.Equal(t, 3, f.weeklyHours(t, f.biology))
	assert.Equal(t, 3, f.allocatedHours(t, f.maria, f.biology))
	assert.Equal(t, 0, f.scheduleCount(t))

	again, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)
	assert.NotEqual(t, sched.ID, again.ID)
}

func TestDeleteMissingSchedule(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)

	err := svc.Delete(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Equal(t, "schedule not found", appErrors.FromError(err).Message)

	err = svc.Delete(context.Background(), 0)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateForDivisionChecks(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	t.Run("unknown division", func(t *testing.T) {
		req := f.mondayFirstSlot()
		req.DivisionID = "999"
		_, err := svc.CreateForDivision(ctx, req)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
		assert.Equal(t, "division not found", appErrors.FromError(err).Message)
	})

	t.Run("shift differs from division", func(t *testing.T) {
		req := f.mondayFirstSlot()
		req.ShiftID = raw(f.morning)
		_, err := svc.CreateForDivision(ctx, req)
		requireConflict(t, err, models.ConflictCrossShift, "division belongs to a different shift")
	})

	t.Run("teacher not registered for subject", func(t *testing.T) {
		req := f.mondayFirstSlot()
		req.SubjectID = raw(f.chemistry)
		_, err := svc.CreateForDivision(ctx, req)
		requireConflict(t, err, models.ConflictTeacherSubject, "teacher not registered for this subject")
	})

	t.Run("teacher outside the division shift", func(t *testing.T) {
		req := f.mondayFirstSlot()
		req.DivisionID = raw(f.div1M)
		req.ShiftID = ""
		_, err := svc.CreateForDivision(ctx, req)
		requireConflict(t, err, models.ConflictTeacherShift, "teacher not assigned to this shift")
	})

	t.Run("unknown teacher", func(t *testing.T) {
		req := f.mondayFirstSlot()
		req.TeacherID = "999"
		_, err := svc.CreateForDivision(ctx, req)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	})

	assert.Equal(t, 0, f.scheduleCount(t))
	assert.Equal(t, 3, f.weeklyHours(t, f.biology))
	assert.Equal(t, 2, f.weeklyHours(t, f.chemistry))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(req *CreateForDivisionRequest)
		message string
	}{
		{"slot above maximum", func(req *CreateForDivisionRequest) { req.Slot = "9" }, "slot must be at most 8"},
		{"weekend day", func(req *CreateForDivisionRequest) { req.Day = "Sunday" }, "invalid day"},
		{"missing slot", func(req *CreateForDivisionRequest) { req.Slot = "" }, "slot is required"},
		{"bad start time", func(req *CreateForDivisionRequest) { req.StartTime = "25:00" }, "start_time must use the HH:MM format"},
		{"reversed times", func(req *CreateForDivisionRequest) { req.StartTime, req.EndTime = "10:00", "09:00" }, "start must precede end"},
		{"bad subject id", func(req *CreateForDivisionRequest) { req.SubjectID = "abc" }, "subject_id must be a positive integer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.mondayFirstSlot()
			tc.mutate(&req)
			_, err := svc.CreateForDivision(ctx, req)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
		})
	}

	spanish := f.mondayFirstSlot()
	spanish.Day = "miércoles"
	sched, err := svc.CreateForDivision(ctx, spanish)
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", sched.Day)
}

func TestCreateForTeacherChecks(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	t.Run("teacher not in shift", func(t *testing.T) {
		_, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: raw(f.morning), Day: "Monday", Slot: "1"})
		requireConflict(t, err, models.ConflictTeacherShift, "teacher not assigned to this shift")
	})

	t.Run("division in another shift", func(t *testing.T) {
		_, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: raw(f.afternoon), Day: "Monday", Slot: "1", DivisionID: raw(f.div1M)})
		requireConflict(t, err, models.ConflictCrossShift, "division belongs to a different shift")
	})

	t.Run("unknown shift", func(t *testing.T) {
		_, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: "999", Day: "Monday", Slot: "1"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	})

	t.Run("subject not allocated", func(t *testing.T) {
		_, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: raw(f.afternoon), Day: "Monday", Slot: "1", SubjectID: raw(f.chemistry)})
		requireConflict(t, err, models.ConflictTeacherSubject, "teacher not registered for this subject")
	})

	sched, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: raw(f.afternoon), Day: "Tuesday", Slot: "2"})
	require.NoError(t, err)
	assert.Nil(t, sched.DivisionID)
	assert.Nil(t, sched.SubjectID)
	assert.Equal(t, 3, f.weeklyHours(t, f.biology))
	assert.Equal(t, 3, f.allocatedHours(t, f.maria, f.biology))
}

func TestCountersStayConsistent(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	audit := NewCounterAuditService(f.counters, zap.NewNop())
	ctx := context.Background()

	var created []int64
	for slot := 1; slot <= 4; slot++ {
		req := f.mondayFirstSlot()
		req.Slot = validation.Raw(strconv.Itoa(slot))
		req.StartTime, req.EndTime = "", ""
		sched, err := svc.CreateForDivision(ctx, req)
		require.NoError(t, err)
		created = append(created, sched.ID)
	}
	teacherOnly, err := svc.CreateForTeacher(ctx, CreateForTeacherRequest{
		TeacherID: raw(f.pedro), ShiftID: raw(f.afternoon), Day: "Friday", Slot: "3", DivisionID: raw(f.div1B), SubjectID: raw(f.biology),
	})
	require.NoError(t, err)
	created = append(created, teacherOnly.ID)

	_, err = svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.Error(t, err)
	require.NoError(t, svc.Delete(ctx, created[1]))

	assert.Equal(t, 3+4, f.weeklyHours(t, f.biology))
	assert.Equal(t, 3+3, f.allocatedHours(t, f.maria, f.biology))
	assert.Equal(t, 0+1, f.allocatedHours(t, f.pedro, f.biology))

	drift, err := audit.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestListsReturnCreatedRows(t *testing.T) {
	f := newTimetableFixture(t)
	svc := f.service(nil, nil)
	ctx := context.Background()

	tuesday := f.mondayFirstSlot()
	tuesday.Day = "Tuesday"
	_, err := svc.CreateForDivision(ctx, tuesday)
	require.NoError(t, err)
	monday, err := svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	rows, err := svc.ListForDivision(ctx, f.div1A)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, monday.ID, rows[0].ID)
	assert.Equal(t, "Tuesday", rows[1].Day)
	require.NotNil(t, rows[0].SubjectName)
	assert.Equal(t, "Biology", *rows[0].SubjectName)
	require.NotNil(t, rows[0].TeacherName)
	assert.Equal(t, "Maria", *rows[0].TeacherName)
	assert.Equal(t, "Afternoon", rows[0].ShiftName)

	byTeacher, err := svc.ListForTeacher(ctx, f.maria, f.afternoon)
	require.NoError(t, err)
	assert.Len(t, byTeacher, 2)

	empty, err := svc.ListForTeacher(ctx, f.maria, f.morning)
	require.NoError(t, err)
	assert.Empty(t, empty)

	detail, err := svc.Get(ctx, monday.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.DivisionName)
	assert.Equal(t, "1A", *detail.DivisionName)

	_, err = svc.Get(ctx, 999)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

// blindScheduleRepo skips the pre-checks so only the store constraints guard the insert.
type blindScheduleRepo struct {
	*repository.ScheduleRepository
}

func (blindScheduleRepo) FindDivisionSlot(ctx context.Context, exec sqlx.ExtContext, divisionID int64, day string, slot int) (*models.Schedule, error) {
	return nil, nil
}

func (blindScheduleRepo) FindTeacherSlot(ctx context.Context, exec sqlx.ExtContext, q models.ScheduleSlotQuery) (*models.Schedule, error) {
	return nil, nil
}

func TestStoreConstraintsMapToConflicts(t *testing.T) {
	f := newTimetableFixture(t)
	ctx := context.Background()
	_, err := f.service(nil, nil).CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)

	f.stores.Schedules = blindScheduleRepo{f.schedules}
	metrics := NewMetricsService()
	svc := f.service(nil, metrics)

	sameSlot := f.mondayFirstSlot()
	sameSlot.TeacherID = raw(f.pedro)
	_, err = svc.CreateForDivision(ctx, sameSlot)
	requireConflict(t, err, models.ConflictDivisionSlot, "slot already assigned for this division")

	_, err = svc.CreateForTeacher(ctx, CreateForTeacherRequest{TeacherID: raw(f.maria), ShiftID: raw(f.afternoon), Day: "Monday", Slot: "1"})
	requireConflict(t, err, models.ConflictTeacherSlot, "teacher already has an assignment in this day/slot/shift")

	assert.Equal(t, 1, f.scheduleCount(t))
	assert.Equal(t, 4, f.weeklyHours(t, f.biology))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.scheduleConflicts.WithLabelValues(models.ConflictDivisionSlot)))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.scheduleMutations.WithLabelValues(opCreateForDivision, OutcomeConflict))+
		testutil.ToFloat64(metrics.scheduleMutations.WithLabelValues(opCreateForTeacher, OutcomeConflict)))
}

func TestStoreConflictClassification(t *testing.T) {
	sched := &models.Schedule{ID: 7, Day: "Monday", Slot: 2, ShiftID: 1}
	cases := []struct {
		err       error
		dimension string
	}{
		{&database.ConstraintError{Kind: database.ErrDuplicate, Constraint: database.ConstraintScheduleDivisionSlot}, models.ConflictDivisionSlot},
		{&database.ConstraintError{Kind: database.ErrDuplicate, Constraint: database.ConstraintScheduleTeacherSlot}, models.ConflictTeacherSlot},
		{&database.ConstraintError{Kind: database.ErrDuplicate}, models.ConflictDuplicate},
		{&database.ConstraintError{Kind: database.ErrForeignKey, Constraint: database.ConstraintScheduleAllocation}, models.ConflictTeacherSubject},
		{&database.ConstraintError{Kind: database.ErrForeignKey, Constraint: database.ConstraintScheduleTeacherShift}, models.ConflictTeacherShift},
		{&database.ConstraintError{Kind: database.ErrForeignKey, Constraint: database.ConstraintScheduleDivisionShift}, models.ConflictCrossShift},
		{&database.ConstraintError{Kind: database.ErrForeignKey}, models.ConflictReference},
	}
	for _, tc := range cases {
		err := storeConflict(tc.err, sched, msgTeacherSlot)
		var conflictErr *models.ScheduleConflictError
		require.True(t, errors.As(err, &conflictErr), tc.dimension)
		assert.Equal(t, tc.dimension, conflictErr.Conflict.Dimension)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	}

	err := storeConflict(&database.ConstraintError{Kind: database.ErrCheck}, sched, msgTeacherSlot)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	err = storeConflict(errors.New("connection reset"), sched, msgTeacherSlot)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal))
}

type failingCounters struct {
	*repository.CounterRepository
}

func (failingCounters) AddAllocationHours(ctx context.Context, exec sqlx.ExtContext, teacherID, subjectID int64, delta int) error {
	return errors.New("disk I/O error")
}

func TestCounterFailureRollsBackInsert(t *testing.T) {
	f := newTimetableFixture(t)
	f.stores.Counters = failingCounters{f.counters}
	svc := f.service(nil, nil)

	_, err := svc.CreateForDivision(context.Background(), f.mondayFirstSlot())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal))

	assert.Equal(t, 0, f.scheduleCount(t))
	assert.Equal(t, 3, f.weeklyHours(t, f.biology))
	assert.Equal(t, 3, f.allocatedHours(t, f.maria, f.biology))
}

// memoryCache is a CacheRepository backed by a map of JSON payloads.
type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = payload
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func TestListsAreCachedUntilMutation(t *testing.T) {
	f := newTimetableFixture(t)
	ctx := context.Background()
	store := newMemoryCache()
	svc := f.service(NewCacheService(store, nil, time.Minute, zap.NewNop(), true), nil)

	rows, err := svc.ListForDivision(ctx, f.div1A)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, store.items, "schedules:division:"+strconv.FormatInt(f.div1A, 10))

	divisionID := f.div1B
	require.NoError(t, f.schedules.Insert(ctx, nil, &models.Schedule{DivisionID: &divisionID, Day: "Monday", Slot: 1, ShiftID: f.afternoon}))
	rows, err = svc.ListForDivision(ctx, f.div1B)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// written behind the engine's back, so the cached list stays stale until a mutation
	require.NoError(t, f.schedules.Insert(ctx, nil, &models.Schedule{DivisionID: &divisionID, Day: "Monday", Slot: 2, ShiftID: f.afternoon}))
	rows, err = svc.ListForDivision(ctx, f.div1B)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.CreateForDivision(ctx, f.mondayFirstSlot())
	require.NoError(t, err)
	assert.Empty(t, store.items)

	rows, err = svc.ListForDivision(ctx, f.div1B)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
