package loads_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/notify"
)

type svcMock struct{ mock.Mock }

func (m *svcMock) List(ctx context.Context) ([]*models.Load, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*models.Load)
	return v, args.Error(1)
}

func (m *svcMock) Get(ctx context.Context, id string) (*models.Load, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Load)
	return v, args.Error(1)
}

func (m *svcMock) Create(ctx context.Context, in models.LoadInput) (*models.Load, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*models.Load)
	return v, args.Error(1)
}

func (m *svcMock) Patch(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error) {
	args := m.Called(ctx, id, p)
	v, _ := args.Get(0).(*models.Load)
	return v, args.Error(1)
}

func (m *svcMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *svcMock) SendMessage(ctx context.Context, msg models.DirectMessage) (notify.Outcome, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(notify.Outcome), args.Error(1)
}

func (m *svcMock) ListMessages(ctx context.Context, loadID string) ([]*models.Message, error) {
	args := m.Called(ctx, loadID)
	v, _ := args.Get(0).([]*models.Message)
	return v, args.Error(1)
}

func newRouter(t *testing.T) (*svcMock, http.Handler) {
	t.Helper()
	svc := &svcMock{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	api := New(svc)
	api.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	api.Routes(r)
	return svc, r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestPing(t *testing.T) {
	_, h := newRouter(t)
	rec, out := do(t, h, http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["ok"])
	require.Equal(t, "2025-03-01T12:00:00Z", out["time"])
}

func TestListLoads_EmptyIsArray(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("List", mock.Anything).Return(nil, nil)

	rec, out := do(t, h, http.MethodGet, "/api/loads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{}, out["items"])
}

func TestGetLoad(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("Get", mock.Anything, "LD-1").Return(&models.Load{ID: "LD-1", Status: "Planned"}, nil)
	svc.On("Get", mock.Anything, "LD-404").Return(nil, errors.Wrap(models.ErrNotFound, "select load"))

	rec, out := do(t, h, http.MethodGet, "/api/loads/LD-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	item := out["item"].(map[string]any)
	require.Equal(t, "LD-1", item["id"])

	rec, out = do(t, h, http.MethodGet, "/api/loads/LD-404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, false, out["ok"])
	require.Equal(t, "Not found", out["error"])
}

func TestCreateLoad(t *testing.T) {
	svc, h := newRouter(t)
	in := models.LoadInput{Origin: "Dallas", Destination: "Austin", DriverPhone: "2145550100"}
	svc.On("Create", mock.Anything, in).Return(&models.Load{ID: "LD-10001", Origin: "Dallas"}, nil)

	rec, out := do(t, h, http.MethodPost, "/api/loads", `{"origin":"Dallas","destination":"Austin","driverPhone":"2145550100"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, out["ok"])
	require.Equal(t, "LD-10001", out["item"].(map[string]any)["id"])
}

func TestCreateLoad_BadJSON(t *testing.T) {
	_, h := newRouter(t)
	rec, out := do(t, h, http.MethodPost, "/api/loads", `{"origin":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid JSON body", out["error"])
}

func TestPatchLoad(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("Patch", mock.Anything, "LD-1", mock.MatchedBy(func(p models.LoadPatch) bool {
		return p.Status != nil && *p.Status == "Loaded" && p.ETA == nil && !p.OriginLocationID.Set
	})).Return(&models.Load{ID: "LD-1", Status: "Loaded"}, nil)
	svc.On("Patch", mock.Anything, "LD-2", mock.Anything).Return(nil, models.ErrNotFound)

	rec, out := do(t, h, http.MethodPatch, "/api/loads/LD-1", `{"status":"Loaded"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Loaded", out["item"].(map[string]any)["status"])

	rec, _ = do(t, h, http.MethodPatch, "/api/loads/LD-2", `{"status":"Loaded"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLoad(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("Delete", mock.Anything, "LD-1").Return(nil)
	svc.On("Delete", mock.Anything, "LD-2").Return(models.ErrNotFound)

	rec, out := do(t, h, http.MethodDelete, "/api/loads/LD-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"ok": true}, out)

	rec, _ = do(t, h, http.MethodDelete, "/api/loads/LD-2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessage(t *testing.T) {
	svc, h := newRouter(t)
	msg := models.DirectMessage{LoadID: "LD-1", To: "driver", Body: "call me"}
	svc.On("SendMessage", mock.Anything, msg).Return(notify.Outcome{OK: true, SID: "SM1"}, nil)

	rec, out := do(t, h, http.MethodPost, "/api/message", `{"loadId":"LD-1","to":"driver","body":"call me"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["ok"])
	require.Equal(t, true, out["sent"])
	require.Equal(t, map[string]any{"ok": true, "sid": "SM1"}, out["twilio"])
}

func TestSendMessage_TransportFailureIsStillOK(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("SendMessage", mock.Anything, mock.Anything).Return(notify.Outcome{Error: "twilio 400"}, nil)

	rec, out := do(t, h, http.MethodPost, "/api/message", `{"loadId":"LD-1","to":"driver","body":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["ok"])
	require.Equal(t, false, out["sent"])
	require.Equal(t, "twilio 400", out["twilio"].(map[string]any)["error"])
}

func TestSendMessage_Validation(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("SendMessage", mock.Anything, mock.Anything).
		Return(notify.Outcome{}, models.NewValidationError("No phone on file for driver"))

	rec, out := do(t, h, http.MethodPost, "/api/message", `{"loadId":"LD-1","to":"driver","body":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No phone on file for driver", out["error"])
}

func TestListMessages(t *testing.T) {
	svc, h := newRouter(t)
	svc.On("ListMessages", mock.Anything, "LD-1").Return([]*models.Message{{ID: 1, LoadID: "LD-1", Body: "hi"}}, nil)
	svc.On("ListMessages", mock.Anything, "").Return(nil, models.NewValidationError("loadId required"))

	rec, out := do(t, h, http.MethodGet, "/api/messages?loadId=LD-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["items"], 1)

	rec, out = do(t, h, http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "loadId required", out["error"])
}
