package handlers

import (
	"context"
	"net/http"

	"home_energy/internal/models"
	"home_energy/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseSession  models.Session
	parseErr      error

	lastSignUpEmail    string
	lastSignUpPassword string
	lastGenEmail       string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, email, password string) (int, error) {
	m.lastSignUpEmail = email
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, email, password string) (string, error) {
	m.lastGenEmail = email
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (models.Session, error) {
	m.lastParseToken = token
	return m.parseSession, m.parseErr
}

type mockDevices struct {
	device models.Device
	list   []models.Device
	err    error

	lastSession models.Session
	lastID      int
	lastParams  service.DeviceParams
	deleted     int
}

func (m *mockDevices) CreateDevice(_ context.Context, s models.Session, p service.DeviceParams) (models.Device, error) {
	m.lastSession, m.lastParams = s, p
	return m.device, m.err
}
func (m *mockDevices) GetDevice(_ context.Context, s models.Session, id int) (models.Device, error) {
	m.lastSession, m.lastID = s, id
	return m.device, m.err
}
func (m *mockDevices) ListDevices(_ context.Context, s models.Session) ([]models.Device, error) {
	m.lastSession = s
	return m.list, m.err
}
func (m *mockDevices) UpdateDevice(_ context.Context, s models.Session, id int, p service.DeviceParams) (models.Device, error) {
	m.lastSession, m.lastID, m.lastParams = s, id, p
	return m.device, m.err
}
func (m *mockDevices) DeleteDevice(_ context.Context, s models.Session, id int) error {
	m.lastSession, m.lastID = s, id
	if m.err == nil {
		m.deleted++
	}
	return m.err
}

type mockSchedules struct {
	blocks []models.ScheduleBlock
	err    error

	lastID     int
	lastBlocks []models.ScheduleBlock
}

func (m *mockSchedules) GetSchedule(_ context.Context, _ models.Session, id int) ([]models.ScheduleBlock, error) {
	m.lastID = id
	return m.blocks, m.err
}
func (m *mockSchedules) SetSchedule(_ context.Context, _ models.Session, id int, blocks []models.ScheduleBlock) error {
	m.lastID, m.lastBlocks = id, blocks
	return m.err
}

type mockTelemetry struct {
	readings []models.TelemetryReading
	err      error

	submitted  []models.TelemetryReading
	lastID     int
	lastFilter service.ReadingFilter
}

func (m *mockTelemetry) Submit(_ context.Context, _ models.Session, r models.TelemetryReading) error {
	m.submitted = append(m.submitted, r)
	return m.err
}
func (m *mockTelemetry) ListReadings(_ context.Context, _ models.Session, id int, f service.ReadingFilter) ([]models.TelemetryReading, error) {
	m.lastID, m.lastFilter = id, f
	return m.readings, m.err
}

type mockUsage struct {
	current models.CurrentUsage
	daily   float64
	monthly models.MonthlyCost
	err     error
}

func (m *mockUsage) CurrentUsage(context.Context, models.Session) (models.CurrentUsage, error) {
	return m.current, m.err
}
func (m *mockUsage) DailyTotal(context.Context, models.Session) (float64, error) {
	return m.daily, m.err
}
func (m *mockUsage) MonthlyCost(context.Context, models.Session) (models.MonthlyCost, error) {
	return m.monthly, m.err
}

type mockTimeline struct {
	entries  []models.TimelineEntry
	err      error
	lastView models.View
}

func (m *mockTimeline) GetTimeline(_ context.Context, _ models.Session, v models.View) ([]models.TimelineEntry, error) {
	m.lastView = v
	return m.entries, m.err
}

type mockGenerator struct {
	report     service.GenerateReport
	err        error
	lastParams service.GenerateParams
}

func (m *mockGenerator) Generate(_ context.Context, _ models.Session, p service.GenerateParams) (service.GenerateReport, error) {
	m.lastParams = p
	return m.report, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// validAuth accepts any token as account 7.
func validAuth() *mockAuth {
	return &mockAuth{parseSession: models.Session{AccountID: 7}}
}
