package handlers

import (
	"context"
	"net/http"
	"time"

	"weatherbox/internal/models"
	"weatherbox/internal/service"

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

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	payload      *service.CurrentConditions
	err          error
	publishErr   error
	publishCalls int
}

func (m *mockMonitoring) CurrentReading(ctx context.Context) (*service.CurrentConditions, error) {
	return m.payload, m.err
}
func (m *mockMonitoring) PublishCurrent(ctx context.Context) error {
	m.publishCalls++
	return m.publishErr
}

type mockHistory struct {
	readings    []models.Reading
	points      []models.PressurePoint
	analysis    *models.Analysis
	predictions []models.PredictionRecord
	err         error

	lastHours int
	lastFrom  time.Time
	lastTo    time.Time
}

func (m *mockHistory) History(ctx context.Context, hours int) ([]models.Reading, error) {
	m.lastHours = hours
	return m.readings, m.err
}
func (m *mockHistory) PressureHistory(ctx context.Context, hours int) ([]models.PressurePoint, error) {
	m.lastHours = hours
	return m.points, m.err
}
func (m *mockHistory) WeekHistory(ctx context.Context) ([]models.Reading, error) {
	return m.readings, m.err
}
func (m *mockHistory) Analysis(ctx context.Context, from, to time.Time) (*models.Analysis, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.analysis, m.err
}
func (m *mockHistory) Predictions(ctx context.Context, from, to time.Time) ([]models.PredictionRecord, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.predictions, m.err
}

type mockEvents struct {
	tagged   models.WeatherEvent
	tagErr   error
	recent   []models.WeatherEvent
	listErr  error
	lastTag  service.TagParams
	lastLim  int
	tagCalls int
}

func (m *mockEvents) Tag(ctx context.Context, p service.TagParams) (models.WeatherEvent, error) {
	m.tagCalls++
	m.lastTag = p
	return m.tagged, m.tagErr
}
func (m *mockEvents) Recent(ctx context.Context, limit int) ([]models.WeatherEvent, error) {
	m.lastLim = limit
	return m.recent, m.listErr
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
