package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"machine_monitor/internal/models"
	"machine_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockFleet struct {
	result      service.RepairResult
	err         error
	lastMachine string
	calls       int
}

func (m *mockFleet) Repair(_ context.Context, machine string) (service.RepairResult, error) {
	m.calls++
	m.lastMachine = machine
	return m.result, m.err
}

type mockMonitoring struct {
	snapshot models.FleetSnapshot
	fleetErr error

	machine     models.MachineState
	machineErr  error
	lastMachine string

	ticks     []models.TickSummary
	ticksErr  error
	lastLimit int
}

func (m *mockMonitoring) GetFleet(context.Context) (models.FleetSnapshot, error) {
	return m.snapshot, m.fleetErr
}

func (m *mockMonitoring) GetMachine(_ context.Context, machine string) (models.MachineState, error) {
	m.lastMachine = machine
	return m.machine, m.machineErr
}

func (m *mockMonitoring) GetTickHistory(_ context.Context, limit int) ([]models.TickSummary, error) {
	m.lastLimit = limit
	return m.ticks, m.ticksErr
}

type mockEventLog struct {
	resp       []models.FleetEvent
	err        error
	lastFilter service.LogFilter
	called     bool
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.FleetEvent, error) {
	m.called = true
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// do performs a request against r, adding a bearer token when token is set.
func do(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(r, req)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
