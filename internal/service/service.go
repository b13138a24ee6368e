package service

import (
	"context"
	"time"

	"weatherbox/internal/forecast"
	"weatherbox/internal/models"
	"weatherbox/internal/repository"
	"weatherbox/internal/weatherapi"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the enriched current-conditions payload the dashboard
// and the live push both consume.
type Monitoring interface {
	CurrentReading(ctx context.Context) (*CurrentConditions, error)
	PublishCurrent(ctx context.Context) error
}

// History exposes the stored reading windows and the range analysis.
type History interface {
	History(ctx context.Context, hours int) ([]models.Reading, error)
	PressureHistory(ctx context.Context, hours int) ([]models.PressurePoint, error)
	WeekHistory(ctx context.Context) ([]models.Reading, error)
	Analysis(ctx context.Context, from, to time.Time) (*models.Analysis, error)
	Predictions(ctx context.Context, from, to time.Time) ([]models.PredictionRecord, error)
}

// Events exposes operator event tagging and recall.
type Events interface {
	Tag(ctx context.Context, p TagParams) (models.WeatherEvent, error)
	Recent(ctx context.Context, limit int) ([]models.WeatherEvent, error)
}

// Collector runs the background sensor loop that feeds the readings table.
// Stop via context cancellation in main() for graceful shutdown.
type Collector interface {
	Run(ctx context.Context, tick time.Duration)
}

// Broadcaster fans a typed message out to live dashboard clients. The
// websocket hub implements it; services stay transport-agnostic.
type Broadcaster interface {
	Broadcast(messageType string, data any)
}

// Comparer checks a local reading against an official observation.
type Comparer interface {
	Compare(ctx context.Context, local models.Reading) weatherapi.Comparison
}

type Service struct {
	Monitoring
	History
	Events
	Collector
	Authorization
}

// NewService wires the repository layer into concrete services. comparer and
// broadcaster may be nil: comparison and live push are optional context, not
// dependencies.
func NewService(repos *repository.Repository, comparer Comparer, broadcaster Broadcaster) *Service {
	return &Service{
		Monitoring:    NewMonitoringService(repos.Readings, repos.Predictions, comparer, broadcaster),
		History:       NewHistoryService(repos.Readings, repos.Predictions, repos.Events),
		Events:        NewEventsService(repos.Events, repos.Readings, broadcaster),
		Collector:     NewCollectorService(repos.Readings),
		Authorization: NewAuthService(repos.Auth),
	}
}

// CurrentConditions is the enriched payload for the dashboard's current view.
type CurrentConditions struct {
	Reading          *models.Reading        `json:"reading"`
	DewPointF        *float64               `json:"dewpoint_f,omitempty"`
	FeelsLikeF       *float64               `json:"feels_like_f,omitempty"`
	Comfort          []string               `json:"comfort,omitempty"`
	TemperatureTrend forecast.Trend         `json:"temperature_trend"`
	HumidityTrend    forecast.Trend         `json:"humidity_trend"`
	PressureTrend    forecast.Trend         `json:"pressure_trend"`
	Predictions      forecast.PredictionSet `json:"predictions"`
	TodaySummary     *models.DailySummary   `json:"today_summary,omitempty"`
	APIComparison    *weatherapi.Comparison `json:"api_comparison,omitempty"`
}

// TagParams is the operator input for tagging a weather event.
type TagParams struct {
	EventType string `json:"event_type" binding:"required"`
	Intensity string `json:"intensity"`
	Notes     string `json:"notes"`
}
