package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable/internal/middleware"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/wire"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

type apiResponse struct {
	Code   int                    `json:"-"`
	Header http.Header            `json:"-"`
	Body   []byte                 `json:"-"`
	Data   json.RawMessage        `json:"data"`
	Error  *apiError              `json:"error"`
	Meta   map[string]interface{} `json:"meta"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := service.NewMetricsService()
	container := wire.Build(db, wire.Options{MaxSlots: 8, Metrics: metrics, Logger: zap.NewNop()})

	router := gin.New()
	router.Use(internalmiddleware.Metrics(metrics))
	metricsHandler := handler.NewMetricsHandler(metrics, db)
	router.GET("/metrics", metricsHandler.Prometheus)
	router.GET("/ready", metricsHandler.Ready)
	handler.RegisterRoutes(router.Group("/api/v1"), container.Handlers())
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, payload interface{}) apiResponse {
	a.t.Helper()
	var body []byte
	switch v := payload.(type) {
	case nil:
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	resp := apiResponse{Code: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp
}

// create posts payload and returns the id of the created record.
func (a *apiClient) create(path string, payload interface{}) int64 {
	a.t.Helper()
	resp := a.do(http.MethodPost, path, payload)
	require.Equal(a.t, http.StatusCreated, resp.Code, string(resp.Body))
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(resp.Data, &created))
	require.NotZero(a.t, created.ID)
	return created.ID
}

func (a *apiClient) noContent(method, path string, payload interface{}) {
	a.t.Helper()
	resp := a.do(method, path, payload)
	require.Equal(a.t, http.StatusNoContent, resp.Code, string(resp.Body))
}

type seeded struct {
	shift, plan, cycle, division int64
	biology, maria               int64
}

func seed(a *apiClient) seeded {
	var s seeded
	s.shift = a.create("/api/v1/shifts", map[string]string{"name": "Afternoon"})
	s.plan = a.create("/api/v1/plans", map[string]string{"name": "Sciences"})
	s.cycle = a.create("/api/v1/cycles", map[string]string{"name": "1st"})
	a.noContent(http.MethodPost, fmt.Sprintf("/api/v1/shifts/%d/plans", s.shift), map[string]int64{"id": s.plan})
	a.noContent(http.MethodPost, fmt.Sprintf("/api/v1/plans/%d/cycles", s.plan), map[string]int64{"id": s.cycle})
	s.division = a.create("/api/v1/divisions", map[string]interface{}{
		"name": "1A", "shift_id": s.shift, "plan_id": s.plan, "cycle_id": s.cycle,
	})

	s.biology = a.create("/api/v1/subjects", map[string]interface{}{"name": "Biology", "base_hours": 3})
	a.noContent(http.MethodPost, fmt.Sprintf("/api/v1/plans/%d/subjects", s.plan), map[string]int64{"id": s.biology})
	s.maria = a.create("/api/v1/teachers", map[string]string{"name": "Maria"})
	a.noContent(http.MethodPost, fmt.Sprintf("/api/v1/teachers/%d/shifts", s.maria), map[string]int64{"shift_id": s.shift})
	a.create(fmt.Sprintf("/api/v1/teachers/%d/subjects", s.maria), map[string]interface{}{"subject_id": s.biology, "base_hours": 3})
	return s
}

func TestScheduleLifecycleOverHTTP(t *testing.T) {
	a := newAPIClient(t)
	s := seed(a)

	slot := map[string]interface{}{"day": "Monday", "slot": 1, "subject_id": s.biology, "teacher_id": s.maria}
	scheduleID := a.create(fmt.Sprintf("/api/v1/divisions/%d/schedules", s.division), slot)

	resp := a.do(http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d", s.biology), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var subject struct {
		WeeklyHours int `json:"weekly_hours"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))
	assert.Equal(t, 4, subject.WeeklyHours)

	resp = a.do(http.MethodPost, fmt.Sprintf("/api/v1/divisions/%d/schedules", s.division), slot)
	require.Equal(t, http.StatusConflict, resp.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, "slot already assigned for this division", resp.Error.Message)
	conflict, ok := resp.Meta["conflict"].(map[string]interface{})
	require.True(t, ok, string(resp.Body))
	assert.Equal(t, "DIVISION_SLOT", conflict["dimension"])
	assert.EqualValues(t, scheduleID, conflict["schedule_id"])

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/divisions/%d/schedules", s.division), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Biology", rows[0]["subject_name"])

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/teachers/%d/schedules?shiftId=%d", s.maria, s.shift), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	assert.Len(t, rows, 1)

	resp = a.do(http.MethodGet, "/api/v1/maintenance/counters", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, resp.Meta["consistent"])

	a.noContent(http.MethodDelete, fmt.Sprintf("/api/v1/schedules/%d", scheduleID), nil)
	resp = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/schedules/%d", scheduleID), nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "schedule not found", resp.Error.Message)

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d", s.biology), nil)
	require.NoError(t, json.Unmarshal(resp.Data, &subject))
	assert.Equal(t, 3, subject.WeeklyHours)

	resp = a.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Body), `schedule_conflicts_total{dimension="DIVISION_SLOT"} 1`)
	assert.Contains(t, string(resp.Body), `path="/api/v1/divisions/:id/schedules"`)
}

func TestTeacherScheduleOverHTTP(t *testing.T) {
	a := newAPIClient(t)
	s := seed(a)

	path := fmt.Sprintf("/api/v1/teachers/%d/schedules", s.maria)
	a.create(path, map[string]interface{}{
		"shift_id": s.shift, "day": "Tuesday", "slot": 2, "start_time": "9:00", "end_time": "09:45",
	})

	resp := a.do(http.MethodPost, path, map[string]interface{}{"shift_id": s.shift, "day": "Tuesday", "slot": 2})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "teacher already has an assignment in this day/slot/shift", resp.Error.Message)

	resp = a.do(http.MethodPost, path, map[string]interface{}{"shift_id": s.shift, "day": "Sunday", "slot": 1})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = a.do(http.MethodPost, path, map[string]interface{}{
		"shift_id": s.shift, "day": "Friday", "slot": 1, "start_time": "10:00", "end_time": "09:00",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "start must precede end", resp.Error.Message)

	resp = a.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "shiftId is required", resp.Error.Message)
}

func TestTimetableExportOverHTTP(t *testing.T) {
	a := newAPIClient(t)
	s := seed(a)
	a.create(fmt.Sprintf("/api/v1/divisions/%d/schedules", s.division), map[string]interface{}{
		"day": "Wednesday", "slot": 1, "subject_id": s.biology, "teacher_id": s.maria,
	})

	resp := a.do(http.MethodGet, fmt.Sprintf("/api/v1/divisions/%d/timetable?format=csv", s.division), nil)
	require.Equal(t, http.StatusOK, resp.Code, string(resp.Body))
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "timetable_division_1a_afternoon.csv")
	assert.Contains(t, string(resp.Body), "Biology / Maria")

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/teachers/%d/timetable?shiftId=%d&format=pdf", s.maria, s.shift), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(resp.Body, []byte("%PDF")))

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/divisions/%d/timetable?format=xls", s.division), nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "format must be csv or pdf", resp.Error.Message)
}

func TestCatalogOverHTTP(t *testing.T) {
	a := newAPIClient(t)
	s := seed(a)

	resp := a.do(http.MethodPost, "/api/v1/subjects", map[string]interface{}{"name": "Biology"})
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = a.do(http.MethodPost, "/api/v1/teachers", `{"name":`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid payload", resp.Error.Message)

	resp = a.do(http.MethodGet, "/api/v1/teachers/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = a.do(http.MethodGet, "/api/v1/teachers/999", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = a.do(http.MethodPut, fmt.Sprintf("/api/v1/teachers/%d", s.maria), map[string]string{"name": "  María  "})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), `"name":"María"`)

	resp = a.do(http.MethodPut, fmt.Sprintf("/api/v1/teachers/%d/subjects/%d", s.maria, s.biology), map[string]int{"base_hours": 5})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), `"allocated_hours":5`)

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/divisions?shiftId=%d", s.shift), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), `"shift_name":"Afternoon"`)

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/shifts/%d/plans", s.shift), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), "Sciences")

	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/plans/%d/subjects", s.plan), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), "Biology")

	a.noContent(http.MethodPost, fmt.Sprintf("/api/v1/cycles/%d/subjects", s.cycle), map[string]int64{"id": s.biology})
	resp = a.do(http.MethodGet, fmt.Sprintf("/api/v1/cycles/%d/subjects", s.cycle), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Data), "Biology")

	a.create(fmt.Sprintf("/api/v1/divisions/%d/schedules", s.division), map[string]interface{}{
		"day": "Monday", "slot": 1, "subject_id": s.biology,
	})
	resp = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/subjects/%d", s.biology), nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = a.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}
