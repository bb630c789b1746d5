package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nebula-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	active  map[string]int
	stopped []string
}

func (f *fakeSessions) StartSession(userID string, minutes int) (services.TimerState, error) {
	if minutes <= 0 {
		return services.TimerState{}, &services.ValidationError{Field: "duration", Message: "Duration must be a positive number of minutes"}
	}
	if _, ok := f.active[userID]; ok {
		return services.TimerState{}, services.ErrSessionActive
	}
	f.active[userID] = minutes
	return f.State(userID), nil
}

func (f *fakeSessions) StopSession(userID string) (services.TimerState, error) {
	if _, ok := f.active[userID]; !ok {
		return services.TimerState{}, services.ErrNoSession
	}
	delete(f.active, userID)
	f.stopped = append(f.stopped, userID)
	return services.TimerState{}, nil
}

func (f *fakeSessions) State(userID string) services.TimerState {
	minutes, ok := f.active[userID]
	return services.TimerState{IsActive: ok, TotalSeconds: minutes * 60, RemainingSeconds: minutes * 60}
}

func (f *fakeSessions) Subscribe(string) (<-chan services.SessionUpdate, func()) {
	ch := make(chan services.SessionUpdate)
	return ch, func() {}
}

func TestSessionController(t *testing.T) {
	fake := &fakeSessions{active: map[string]int{}}
	sc := &SessionController{Sessions: fake}

	r := gin.New()
	g := r.Group("/api/treatment/session", asUser("user-1", "ana@example.com", "Ana"))
	g.POST("/start", sc.StartSession)
	g.POST("/stop", sc.StopSession)
	g.GET("", sc.GetSession)

	call := func(method, url, body string) (int, map[string]interface{}) {
		req := httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return w.Code, out
	}

	steps := []struct {
		name        string
		method      string
		url         string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{name: "stop while idle", method: http.MethodPost, url: "/api/treatment/session/stop", wantStatus: http.StatusBadRequest, wantMessage: "No treatment session is running"},
		{name: "missing duration", method: http.MethodPost, url: "/api/treatment/session/start", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "negative duration", method: http.MethodPost, url: "/api/treatment/session/start", body: `{"duration":-5}`, wantStatus: http.StatusBadRequest, wantMessage: "Duration must be a positive number of minutes"},
		{name: "start", method: http.MethodPost, url: "/api/treatment/session/start", body: `{"duration":25}`, wantStatus: http.StatusOK, wantMessage: "Treatment session started"},
		{name: "start twice", method: http.MethodPost, url: "/api/treatment/session/start", body: `{"duration":25}`, wantStatus: http.StatusConflict, wantMessage: "A treatment session is already running"},
		{name: "state", method: http.MethodGet, url: "/api/treatment/session", wantStatus: http.StatusOK},
		{name: "stop", method: http.MethodPost, url: "/api/treatment/session/stop", wantStatus: http.StatusOK, wantMessage: "Treatment session stopped"},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			status, out := call(s.method, s.url, s.body)
			assert.Equal(t, s.wantStatus, status)
			if s.wantMessage != "" {
				assert.Equal(t, s.wantMessage, out["message"])
			}
			if s.name == "state" {
				state := out["state"].(map[string]interface{})
				assert.Equal(t, true, state["isActive"])
				assert.EqualValues(t, 1500, state["totalSeconds"])
			}
		})
	}
	assert.Equal(t, []string{"user-1"}, fake.stopped)
}

func TestSessionController_CheckOrigin(t *testing.T) {
	sc := &SessionController{AllowedOrigins: []string{"http://localhost:3000"}}

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:3000", want: true},
		{origin: "https://evil.example.com", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, sc.checkOrigin(req), tt.origin)
	}
}

func TestStreakLabel(t *testing.T) {
	assert.Equal(t, "Keep Going!", streakLabel(0))
	assert.Equal(t, "Keep Going!", streakLabel(6))
	assert.Equal(t, "On Fire!", streakLabel(7))
	assert.Equal(t, "On Fire!", streakLabel(40))
}
