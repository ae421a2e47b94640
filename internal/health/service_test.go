package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/metascrape/internal/scraper"
)

func newTestService() *Service {
	s := NewService(zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestService_RegisterAndStatus(t *testing.T) {
	s := newTestService()
	s.Register("tmdb")

	item := s.Get("tmdb")
	require.NotNil(t, item)
	assert.Equal(t, StatusOK, item.Status)
	assert.Nil(t, item.Timestamp)

	s.SetWarning("tmdb", "API key not configured")
	item = s.Get("tmdb")
	assert.Equal(t, StatusWarning, item.Status)
	require.NotNil(t, item.Timestamp)
	assert.True(t, s.IsHealthy("tmdb"))

	s.SetError("tmdb", "down")
	assert.False(t, s.IsHealthy("tmdb"))

	s.ClearStatus("tmdb")
	assert.Equal(t, StatusOK, s.Get("tmdb").Status)

	s.Unregister("tmdb")
	assert.Nil(t, s.Get("tmdb"))
	assert.False(t, s.IsHealthy("tmdb"))
}

func TestService_SetStatusUnregistered(t *testing.T) {
	s := newTestService()
	s.SetError("omdb", "down")
	assert.Nil(t, s.Get("omdb"))
}

func TestService_ObserveRequest(t *testing.T) {
	s := newTestService()

	s.ObserveRequest("tmdb", scraper.KindInfo, scraper.ErrorNone, time.Millisecond)
	require.NotNil(t, s.Get("tmdb"), "provider is registered on first observation")
	assert.Equal(t, StatusOK, s.Get("tmdb").Status)

	for i := 1; i < ErrorThreshold; i++ {
		s.ObserveRequest("tmdb", scraper.KindCast, scraper.ErrorNetwork, time.Millisecond)
		assert.Equal(t, StatusWarning, s.Get("tmdb").Status)
	}
	s.ObserveRequest("tmdb", scraper.KindCast, scraper.ErrorAPI, time.Millisecond)
	item := s.Get("tmdb")
	assert.Equal(t, StatusError, item.Status)
	assert.Equal(t, ErrorThreshold, item.Failures)
	assert.Contains(t, item.Message, "api_error")

	s.ObserveRequest("tmdb", scraper.KindInfo, scraper.ErrorNone, time.Millisecond)
	item = s.Get("tmdb")
	assert.Equal(t, StatusOK, item.Status)
	assert.Zero(t, item.Failures)
}

func TestService_RateLimitStaysWarning(t *testing.T) {
	s := newTestService()
	for i := 0; i < ErrorThreshold+2; i++ {
		s.ObserveSearchPage("omdb", scraper.ErrorRateLimit)
	}
	item := s.Get("omdb")
	assert.Equal(t, StatusWarning, item.Status)
	assert.Contains(t, item.Message, "search failed")
}

func TestService_GetAll(t *testing.T) {
	s := newTestService()
	s.Register("tmdb")
	s.Register("omdb")
	s.Register("fanarttv")
	s.SetWarning("omdb", "API key not configured")

	resp := s.GetAll()
	require.Len(t, resp.Providers, 3)
	assert.Equal(t, "fanarttv", resp.Providers[0].Provider)
	assert.Equal(t, "tmdb", resp.Providers[2].Provider)
	assert.Equal(t, Summary{OK: 2, Warning: 1, HasIssues: true}, resp.Summary)
	assert.Equal(t, 3, resp.Summary.Total())
}

func TestItem_MarshalJSON(t *testing.T) {
	now := time.Now()
	data, err := json.Marshal(Item{Provider: "tmdb", Status: StatusOK, Message: "stale", Timestamp: &now})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"tmdb","status":"ok"}`, string(data))

	data, err = json.Marshal(Item{Provider: "tmdb", Status: StatusError, Message: "down"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"tmdb","status":"error","message":"down"}`, string(data))
}

func TestHandlers(t *testing.T) {
	s := newTestService()
	s.Register("tmdb")

	e := echo.New()
	NewHandlers(s).RegisterRoutes(e.Group("/api/v1/health"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Providers, 1)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/tmdb", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type recordingBroadcaster struct {
	events []Item
}

func (r *recordingBroadcaster) Broadcast(msgType string, payload any) error {
	if msgType == EventHealthUpdated {
		r.events = append(r.events, payload.(Item))
	}
	return nil
}

func TestService_BroadcastsChanges(t *testing.T) {
	s := newTestService()
	b := &recordingBroadcaster{}
	s.SetBroadcaster(b)

	s.Register("tmdb")
	s.ObserveRequest("tmdb", scraper.KindInfo, scraper.ErrorNone, time.Millisecond)
	assert.Empty(t, b.events, "unchanged status is not broadcast")

	s.ObserveRequest("tmdb", scraper.KindInfo, scraper.ErrorRateLimit, time.Millisecond)
	s.ObserveRequest("tmdb", scraper.KindInfo, scraper.ErrorNone, time.Millisecond)
	require.Len(t, b.events, 2)
	assert.Equal(t, StatusWarning, b.events[0].Status)
	assert.Equal(t, StatusOK, b.events[1].Status)
}
