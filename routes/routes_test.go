package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/engine"
	"github.com/MichaelPain/FutHaxball-sub001/handlers"
	"github.com/MichaelPain/FutHaxball-sub001/middleware"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/repositories"
	"github.com/MichaelPain/FutHaxball-sub001/services"
	"github.com/MichaelPain/FutHaxball-sub001/storage"
)

var jwtSecret = []byte("routes-test-secret")

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T, opts Options) *apiClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewTournamentService(
		repositories.NewMemoryTournamentRepository(),
		engine.New(engine.WithDirectCompletion(true)),
		storage.NewArchiver(storage.NewMemoryUploader("https://archive.example.com")),
		logger,
	)

	opts.JWTSecret = jwtSecret
	if opts.ResultRateLimit == 0 {
		opts.ResultRateLimit = 100
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	SetupRoutes(router, opts,
		handlers.NewTournamentHandler(svc),
		handlers.NewParticipantHandler(svc),
		handlers.NewStageHandler(svc),
		handlers.NewMatchHandler(svc),
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

func token(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	tok, err := middleware.NewToken(jwtSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends body as JSON and decodes the JSON response into a generic map.
func (c *apiClient) do(method, path, tok string, body interface{}) (int, map[string]json.RawMessage) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]json.RawMessage{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthz(t *testing.T) {
	api := newAPI(t, Options{})
	code, body := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestKnockoutOverHTTP(t *testing.T) {
	api := newAPI(t, Options{})
	organizer := token(t, "org-1", models.RoleOrganizer)

	code, body := api.do(http.MethodPost, "/tournaments", organizer, map[string]interface{}{
		"name":            "Friday Cup",
		"format":          "single_elimination",
		"minParticipants": 2,
	})
	require.Equal(t, http.StatusCreated, code)
	tour := decode[models.Tournament](t, body["tournament"])
	base := "/tournaments/" + tour.ID

	code, _ = api.do(http.MethodPost, base+"/registration/open", organizer, nil)
	require.Equal(t, http.StatusOK, code)

	for _, player := range []string{"alice", "bob"} {
		tok := token(t, player, models.RolePlayer)
		code, body = api.do(http.MethodPost, base+"/participants", tok, map[string]interface{}{"name": player})
		require.Equal(t, http.StatusCreated, code)
		p := decode[models.Participant](t, body["participant"])
		assert.Equal(t, player, p.ID, "participant id comes from the token")

		code, _ = api.do(http.MethodPost, base+"/participants/"+player+"/check-in", tok, nil)
		require.Equal(t, http.StatusOK, code)
	}

	code, _ = api.do(http.MethodPost, base+"/registration/close", organizer, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = api.do(http.MethodPost, base+"/advance", organizer, nil)
	require.Equal(t, http.StatusOK, code)
	stage := decode[models.Stage](t, body["startedStage"])
	require.Len(t, stage.Matches, 1)
	final := stage.Matches[0]

	code, body = api.do(http.MethodPost, base+"/matches/"+final.ID+"/result", organizer, map[string]interface{}{
		"scores": []int{1, 1},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code, "knockout matches cannot be drawn")
	assert.NotEmpty(t, body["error"])

	code, body = api.do(http.MethodPost, base+"/matches/"+final.ID+"/result", organizer, map[string]interface{}{
		"scores":   []int{3, 1},
		"winnerId": final.Participants[0],
	})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "true", string(body["stageResolved"]))

	code, body = api.do(http.MethodGet, base+"/stages/"+stage.ID+"/standings", "", nil)
	require.Equal(t, http.StatusOK, code)
	rows := decode[[]models.Standing](t, body["standings"])
	require.Len(t, rows, 2)
	assert.Equal(t, final.Participants[0], rows[0].ParticipantID)

	code, body = api.do(http.MethodPost, base+"/advance", organizer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "true", string(body["tournamentCompleted"]))

	code, body = api.do(http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, code)
	done := decode[models.Tournament](t, body["tournament"])
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, final.Participants[0], done.Winner)

	code, _ = api.do(http.MethodPost, base+"/cancel", organizer, nil)
	assert.Equal(t, http.StatusConflict, code, "completed tournaments cannot be cancelled")
}

func TestAccessControl(t *testing.T) {
	api := newAPI(t, Options{})
	player := token(t, "p1", models.RolePlayer)
	admin := token(t, "root", models.RoleAdmin)

	code, _ := api.do(http.MethodPost, "/tournaments", "", map[string]interface{}{"name": "x", "format": "round_robin"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/tournaments", player, map[string]interface{}{"name": "x", "format": "round_robin"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := api.do(http.MethodPost, "/tournaments", admin, map[string]interface{}{"name": "League", "format": "round_robin"})
	require.Equal(t, http.StatusCreated, code)
	tour := decode[models.Tournament](t, body["tournament"])

	code, _ = api.do(http.MethodPost, "/tournaments/"+tour.ID+"/participants", "", map[string]interface{}{"name": "anon"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/tournaments/"+tour.ID+"/participants", player, map[string]interface{}{"name": "p1"})
	assert.Equal(t, http.StatusConflict, code, "registration is not open")

	code, _ = api.do(http.MethodPost, "/tournaments/"+tour.ID+"/participants/p1/disqualify", player, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestListAndErrors(t *testing.T) {
	api := newAPI(t, Options{})
	organizer := token(t, "org", models.RoleOrganizer)

	for _, name := range []string{"One", "Two", "Three"} {
		code, _ := api.do(http.MethodPost, "/tournaments", organizer, map[string]interface{}{"name": name, "format": "round_robin"})
		require.Equal(t, http.StatusCreated, code)
	}

	code, body := api.do(http.MethodGet, "/tournaments?status=draft&limit=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Tournament](t, body["tournaments"]), 2)

	code, body = api.do(http.MethodGet, "/tournaments?status=active", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]models.Tournament](t, body["tournaments"]))

	code, _ = api.do(http.MethodGet, "/tournaments?status=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodGet, "/tournaments?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/tournaments/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(http.MethodPost, "/tournaments", organizer, map[string]interface{}{"name": "x", "format": "round_robin", "extra": true})
	assert.Equal(t, http.StatusBadRequest, code, "unknown fields are rejected")

	code, _ = api.do(http.MethodPost, "/tournaments", organizer, map[string]interface{}{"name": "", "format": "round_robin"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = api.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestResultRouteIsRateLimited(t *testing.T) {
	api := newAPI(t, Options{ResultRateLimit: 0.01, ResultRateBurst: 1})
	organizer := token(t, "org", models.RoleOrganizer)

	code, body := api.do(http.MethodPost, "/tournaments", organizer, map[string]interface{}{"name": "Cup", "format": "round_robin"})
	require.Equal(t, http.StatusCreated, code)
	tour := decode[models.Tournament](t, body["tournament"])

	path := "/tournaments/" + tour.ID + "/matches/m1/result"
	result := map[string]interface{}{"scores": []int{1, 0}}

	code, _ = api.do(http.MethodPost, path, organizer, result)
	assert.Equal(t, http.StatusConflict, code, "tournament not active")

	code, _ = api.do(http.MethodPost, path, organizer, result)
	assert.Equal(t, http.StatusTooManyRequests, code)

	code, _ = api.do(http.MethodPost, "/tournaments/"+tour.ID+"/matches/m1/start", organizer, nil)
	assert.Equal(t, http.StatusConflict, code, "other routes are not limited")
}
