package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"weatherbox/internal/forecast"
	"weatherbox/internal/models"
	"weatherbox/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 30 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_at_max", "/ws?interval=5m", 5 * time.Minute},
		{"interval_too_large", "/ws?interval=6m", 30 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=300001", 30 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 30 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 30 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func wsDial(t *testing.T, srvURL, rawQuery string) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(srvURL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = rawQuery
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func TestWebSocket_CurrentStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{payload: &service.CurrentConditions{
		Reading: &models.Reading{
			Timestamp:    time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
			TemperatureF: 68.5,
			TemperatureC: 20.3,
			Humidity:     55,
		},
		Predictions: forecast.PredictionSet{Messages: []string{"🌤️ Stable conditions"}},
	}}
	s := &service.Service{Monitoring: mon}

	r := gin.New()
	h := NewHandler(s, nil, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := wsDial(t, srv.URL, "interval_ms=20")
	defer conn.Close()

	type envelope struct {
		Type  string          `json:"type"`
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}

	// Initial payload arrives before the first tick.
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "new_reading" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var got service.CurrentConditions
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Reading == nil || got.Reading.TemperatureF != 68.5 || got.Reading.Humidity != 55 {
		t.Fatalf("unexpected reading: %+v", got.Reading)
	}

	// A subsequent tick resends the payload.
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "new_reading" {
		t.Fatalf("expected type=new_reading, got %+v", env)
	}
}

func TestWebSocket_HubBroadcastReachesClient(t *testing.T) {
	mon := &mockMonitoring{payload: &service.CurrentConditions{}}
	s := &service.Service{Monitoring: mon}

	hub := NewHub()
	r := gin.New()
	h := NewHandler(s, nil, hub)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	// Long tick so only the initial send and the broadcast arrive.
	conn := wsDial(t, srv.URL, "interval=1m")
	defer conn.Close()

	type envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}

	// Wait for the client to register with the hub, then broadcast.
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Broadcast("event_tag", map[string]string{"event_type": "fog"})

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if env.Type != "event_tag" {
		t.Fatalf("expected type=event_tag, got %+v", env)
	}
}

func TestWebSocket_InitialCurrentError_Closes(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	s := &service.Service{Monitoring: mon}

	r := gin.New()
	h := NewHandler(s, nil, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := wsDial(t, srv.URL, "")
	defer conn.Close()

	// The server closes right after the failed initial send.
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
