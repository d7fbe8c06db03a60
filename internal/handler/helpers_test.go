package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestPathIDRejectsInvalidValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, value := range []string{"abc", "0", "-4"} {
		c, w := newGinContext(http.MethodGet, "/subjects/"+value, nil)
		c.Params = gin.Params{{Key: "id", Value: value}}

		_, ok := pathID(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "id must be a positive integer", env.Error.Message)
	}
}

func TestOptionalQueryIDDefaultsToZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := newGinContext(http.MethodGet, "/divisions", nil)
	id, ok := optionalQueryID(c, "shiftId")
	assert.True(t, ok)
	assert.Zero(t, id)

	c, w := newGinContext(http.MethodGet, "/divisions?shiftId=x", nil)
	_, ok = optionalQueryID(c, "shiftId")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBindJSONRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newGinContext(http.MethodPost, "/subjects", []byte(`{"name":`))

	var dest map[string]interface{}
	assert.False(t, bindJSON(c, &dest))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
	assert.Equal(t, "invalid payload", env.Error.Message)
}

func TestRespondErrorAttachesConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	divisionID := int64(3)
	domainErr := &models.ScheduleConflictError{
		Type:    models.ConflictDivisionSlot,
		Message: "slot already assigned for this division",
		Conflict: models.ScheduleConflict{
			ScheduleID: 7,
			DivisionID: &divisionID,
			ShiftID:    1,
			Day:        "Monday",
			Slot:       1,
			Dimension:  models.ConflictDivisionSlot,
		},
	}
	err := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)

	c, w := newGinContext(http.MethodPost, "/divisions/3/schedules", nil)
	respondError(c, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "slot already assigned for this division", env.Error.Message)
	conflict, ok := env.Meta["conflict"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	assert.Equal(t, "DIVISION_SLOT", conflict["dimension"])
	assert.EqualValues(t, 7, conflict["schedule_id"])
}

func TestRespondErrorWithoutConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newGinContext(http.MethodGet, "/schedules/9", nil)
	respondError(c, appErrors.Clone(appErrors.ErrNotFound, "schedule not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, decode(t, w).Meta)
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{err: errors.New("database is closed")}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database is closed")

	c, _ = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
