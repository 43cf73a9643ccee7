package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slidebot/slidebot/bot"
	"slidebot/slidebot/config"
	"slidebot/slidebot/controllers"
	"slidebot/slidebot/sources/psql/models"
	"slidebot/slidebot/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cfg = config.Config{JWTSecret: "routes-secret"}

func token(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return s
}

type listed struct {
	limit int
}

func (l *listed) ListRecent(_ context.Context, limit int) ([]models.Run, error) {
	l.limit = limit
	return []models.Run{{Link: "https://www.slideshare.net/a/b", State: "done", Pages: 3}}, nil
}

func runsRequest(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	req.Header.Set("Authorization", "Bearer "+token(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRunsRoutes(t *testing.T) {
	lister := &listed{}
	h := RunsRoutes(controllers.NewRunsController(lister), cfg)

	rr := runsRequest(t, h, "?limit=9999")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, maxRunsLimit, lister.limit)

	var runs []models.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Pages)

	assert.Equal(t, http.StatusBadRequest, runsRequest(t, h, "?limit=zero").Code)
}

func TestRunsRoutesWithoutHistory(t *testing.T) {
	h := RunsRoutes(controllers.NewRunsController(nil), cfg)
	assert.Equal(t, http.StatusServiceUnavailable, runsRequest(t, h, "").Code)
}

func TestRunsRoutesRequireToken(t *testing.T) {
	h := RunsRoutes(controllers.NewRunsController(&listed{}), cfg)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEventsStream(t *testing.T) {
	hub := bot.NewHub()
	r := chi.NewRouter()
	r.Mount("/events", EventsRoutes(controllers.NewEventsController(hub), cfg))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events/ws?token=" + token(t)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	want := types.RunEvent{RunID: "r1", Link: "https://www.slideshare.net/a/b", State: types.StateFetching}
	// the subscription is registered after the handshake; keep publishing until one lands
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				hub.Publish(want)
			}
		}
	}()

	var got types.RunEvent
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, types.StateFetching, got.State)
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestEventsStreamRejectsAnonymous(t *testing.T) {
	r := chi.NewRouter()
	r.Mount("/events", EventsRoutes(controllers.NewEventsController(bot.NewHub()), cfg))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
