package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Official is a normalized official observation used for sensor sanity
// checks. Fields the provider omitted stay nil.
type Official struct {
	Source       string    `json:"source"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureF *float64  `json:"temperature_f,omitempty"`
	FeelsLikeF   *float64  `json:"feels_like_f,omitempty"`
	Humidity     *float64  `json:"humidity,omitempty"`
	PressureHPa  *float64  `json:"pressure_hpa,omitempty"`
	WindSpeedMPH *float64  `json:"wind_speed_mph,omitempty"`
	Description  string    `json:"weather_description,omitempty"`
}

// Config holds the official-weather client settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Lat, Lon float64
	Timeout  time.Duration
	CacheTTL time.Duration
}

const (
	defaultBaseURL  = "https://api.openweathermap.org/data/3.0/onecall"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
)

// Client fetches official observations with a circuit breaker and a short
// cache so the dashboard refresh never hammers the upstream API.
type Client struct {
	cfg     Config
	http    *http.Client
	circuit *gobreaker.CircuitBreaker

	mu        sync.Mutex
	cached    *Official
	lastFetch time.Time

	now func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		circuit: cb,
		now:     time.Now,
	}
}

// Official returns the current official observation, serving from cache
// within the TTL. When a refresh fails, stale cached data is returned
// instead of an error as long as any exists.
func (c *Client) Official(ctx context.Context) (*Official, error) {
	c.mu.Lock()
	if c.cached != nil && c.now().Sub(c.lastFetch) < c.cfg.CacheTTL {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	fresh, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		cached := c.cached
		c.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.cached = fresh
	c.lastFetch = c.now()
	c.mu.Unlock()
	return fresh, nil
}

func (c *Client) fetch(ctx context.Context) (*Official, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", c.cfg.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.cfg.Lon))
	values.Set("appid", c.cfg.APIKey)
	values.Set("units", "imperial")
	values.Set("exclude", "minutely,hourly,daily,alerts")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("official weather api status %d", resp.StatusCode)
		}

		var payload struct {
			Current struct {
				DT        int64    `json:"dt"`
				Temp      *float64 `json:"temp"`
				FeelsLike *float64 `json:"feels_like"`
				Humidity  *float64 `json:"humidity"`
				Pressure  *float64 `json:"pressure"`
				WindSpeed *float64 `json:"wind_speed"`
				Weather   []struct {
					Description string `json:"description"`
				} `json:"weather"`
			} `json:"current"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}

		official := &Official{
			Source:       "OpenWeatherMap",
			Timestamp:    time.Unix(payload.Current.DT, 0).UTC(),
			TemperatureF: payload.Current.Temp,
			FeelsLikeF:   payload.Current.FeelsLike,
			Humidity:     payload.Current.Humidity,
			PressureHPa:  payload.Current.Pressure,
			WindSpeedMPH: payload.Current.WindSpeed,
		}
		if len(payload.Current.Weather) > 0 {
			official.Description = payload.Current.Weather[0].Description
		}
		return official, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Official), nil
}
