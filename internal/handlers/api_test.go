package handlers

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/gamenight/internal/middleware"
	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/roster"
	"github.com/jason-s-yu/gamenight/internal/storage"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

func newTestServer(t *testing.T) (*httptest.Server, *tracker.Tracker) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tr := tracker.New(storage.NewMemoryStore(), logger, tracker.Options{ScoreboardRows: 1})
	tr.Load(context.Background())
	srv := httptest.NewServer(NewRouter(logger, tr, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, tr
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGameEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)

	resp := do(t, srv, "POST", "/api/games", `{"name":" Azul ","genre":"Abstract","weight":"medium"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	g := decode[models.Game](t, resp)
	assert.Equal(t, "Azul", g.Name)
	assert.Equal(t, models.WeightMedium, g.Weight)

	resp = do(t, srv, "POST", "/api/games", `{"name":"Azul"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = do(t, srv, "POST", "/api/games", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, "PATCH", "/api/games/"+g.ID, `{"name":""}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	got, _ := tr.Game(g.ID)
	assert.Equal(t, g, got, "empty-name update leaves the record unchanged")

	resp = do(t, srv, "PATCH", "/api/games/"+g.ID, `{"weight":"重量"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.WeightHeavy, decode[models.Game](t, resp).Weight)

	resp = do(t, srv, "PATCH", "/api/games/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, "DELETE", "/api/games/"+g.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, "DELETE", "/api/games/"+g.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImportEndpoint(t *testing.T) {
	srv, tr := newTestServer(t)

	resp := do(t, srv, "POST", "/api/games/import?replace=true", `[{"name":"Catan","weight":"重量"},{"name":"Azul"}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"applied": 2}, decode[map[string]int](t, resp))
	assert.Len(t, tr.Snapshot().Games, 2)

	resp = do(t, srv, "POST", "/api/games/import", `{"name":"Catan"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, "DELETE", "/api/games", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, tr.Snapshot().Games)
}

func TestPlayerEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)

	resp := do(t, srv, "POST", "/api/players", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[models.Participant](t, resp)

	resp = do(t, srv, "POST", "/api/players", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Len(t, tr.Snapshot().Players, 1)

	resp = do(t, srv, "DELETE", "/api/players/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, "DELETE", "/api/players", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBoardEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)
	g, _ := tr.AddGame(context.Background(), "Azul", "", models.WeightLight)
	p, _ := tr.AddPlayer(context.Background(), "Alice")

	resp := do(t, srv, "PUT", "/api/board/rows", `{"count":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]models.ScoreRow](t, resp)
	require.Len(t, rows, 3)
	row := rows[0].ID

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "PUT", "/api/board/rows", `{}`).StatusCode)
	assert.Equal(t, http.StatusCreated, do(t, srv, "POST", "/api/board/rows", "").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, "DELETE", "/api/board/rows/last", "").StatusCode)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "PUT", "/api/board/rows/"+row+"/game", `{"gameId":"`+g.ID+`"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "PUT", "/api/board/rows/"+row+"/game", `{"gameId":"nope"}`).StatusCode)
	assert.Equal(t, http.StatusNoContent, do(t, srv, "PUT", "/api/board/rows/"+row+"/first", `{"playerId":"`+p.ID+`"}`).StatusCode)

	resp = do(t, srv, "POST", "/api/board/rows/"+row+"/cells/"+p.ID+"/cycle", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"value": "win"}, decode[map[string]string](t, resp))

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "PUT", "/api/board/rows/"+row+"/cells/"+p.ID, `{"value":"draw"}`).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, srv, "PUT", "/api/board/rows/"+row+"/cells/"+p.ID, `{"value":"lose"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "PUT", "/api/board/rows/missing/cells/"+p.ID, `{"value":"lose"}`).StatusCode)

	snap := tr.Snapshot()
	assert.Equal(t, g.ID, *snap.Rows[0].GameID)
	assert.Equal(t, map[string]models.WinLoss{p.ID: {Losses: 1}}, snap.BoardTotals)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "PUT", "/api/board/rows/"+row+"/game", `{"gameId":null}`).StatusCode)
	assert.Nil(t, tr.Snapshot().Rows[0].GameID)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "POST", "/api/board/rows/"+row+"/reset", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/board/rows/missing/reset", "").StatusCode)
	assert.Equal(t, http.StatusNoContent, do(t, srv, "POST", "/api/board/reset", "").StatusCode)
	assert.Nil(t, tr.Snapshot().Rows[0].FirstPlayerID)
}

func TestSpinEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)
	row := tr.Snapshot().Rows[0].ID

	assert.Equal(t, http.StatusConflict, do(t, srv, "POST", "/api/board/rows/"+row+"/spin-game", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/board/rows/missing/spin-first", "").StatusCode)

	g, _ := tr.AddGame(context.Background(), "Azul", "", models.WeightLight)
	p, _ := tr.AddPlayer(context.Background(), "Alice")

	resp := do(t, srv, "POST", "/api/board/rows/"+row+"/spin-game", `{"weights":["light"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, g, decode[models.Game](t, resp))

	resp = do(t, srv, "POST", "/api/board/rows/"+row+"/spin-first", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, p, decode[models.Participant](t, resp))

	resp = do(t, srv, "POST", "/api/board/rows/"+row+"/spin-game", `{"weights":["heavy"]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestResultsEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)
	g, _ := tr.AddGame(context.Background(), "Azul", "", models.WeightLight)
	p, _ := tr.AddPlayer(context.Background(), "Alice")
	path := "/api/results/" + g.ID + "/" + p.ID

	do(t, srv, "POST", path, `{"kind":"w"}`)
	do(t, srv, "POST", path, `{"kind":"win"}`)
	resp := do(t, srv, "POST", path, `{"kind":"lose","delta":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.WinLoss{Wins: 2, Losses: 1}, decode[models.WinLoss](t, resp))

	assert.Equal(t, http.StatusBadRequest, do(t, srv, "POST", path, `{"kind":"draw"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/results/nope/"+p.ID, `{"kind":"w"}`).StatusCode)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", "/api/results/"+g.ID, "").StatusCode)
	assert.Empty(t, tr.Snapshot().Results)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "DELETE", "/api/results/"+g.ID, "").StatusCode)
	assert.Equal(t, http.StatusNoContent, do(t, srv, "DELETE", "/api/results", "").StatusCode)
}

func TestResultTallySaturates(t *testing.T) {
	srv, tr := newTestServer(t)
	g, _ := tr.AddGame(context.Background(), "Azul", "", models.WeightLight)
	p, _ := tr.AddPlayer(context.Background(), "Alice")
	path := "/api/results/" + g.ID + "/" + p.ID

	do(t, srv, "POST", path, `{"kind":"win","delta":5}`)
	resp := do(t, srv, "POST", path, `{"kind":"win","delta":9223372036854775807}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.WinLoss{Wins: math.MaxInt32}, decode[models.WinLoss](t, resp))
}

func TestRowCountLimit(t *testing.T) {
	srv, tr := newTestServer(t)

	resp := do(t, srv, "PUT", "/api/board/rows", `{"count":100000000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.ScoreRow](t, resp), 100)

	assert.Equal(t, http.StatusConflict, do(t, srv, "POST", "/api/board/rows", "").StatusCode)
	assert.Len(t, tr.Snapshot().Rows, 100)
}

// cancelAwareSlots fails writes whose context is already done, like a
// network backend would.
type cancelAwareSlots struct {
	*storage.MemoryStore
}

func (s cancelAwareSlots) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestWritesSurviveClientDisconnect(t *testing.T) {
	logger, hook := test.NewNullLogger()
	mem := storage.NewMemoryStore()
	tr := tracker.New(cancelAwareSlots{mem}, logger, tracker.Options{})
	tr.Load(context.Background())
	router := NewRouter(logger, tr, []string{"*"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/players", strings.NewReader(`{"name":"Alice"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	raw, ok, err := mem.Get(context.Background(), roster.SlotKey)
	require.NoError(t, err)
	require.True(t, ok, "roster was persisted despite the cancelled request")
	assert.Contains(t, string(raw), "Alice")
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, "failed to persist roster", e.Message)
	}
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := middleware.LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, math.Inf(1))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/state", nil))

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "failed to write response" {
			found = true
			assert.Equal(t, "/api/state", e.Data["path"])
			assert.Error(t, e.Data["error"].(error))
		}
	}
	assert.True(t, found, "encode failure is logged")
}

func TestDrawEndpoints(t *testing.T) {
	srv, tr := newTestServer(t)
	ctx := context.Background()
	azul, _ := tr.AddGame(ctx, "Azul", "Abstract", models.WeightLight)
	brass, _ := tr.AddGame(ctx, "Brass", "Economic", models.WeightHeavy)
	tr.AddPlayer(ctx, "Alice")

	resp := do(t, srv, "GET", "/api/selection/roulette/pool?sort=desc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pool := decode[[]models.Game](t, resp)
	require.Len(t, pool, 2)
	assert.Equal(t, brass.ID, pool[0].ID)

	assert.Equal(t, http.StatusNoContent, do(t, srv, "POST", "/api/selection/roulette/"+brass.ID+"/toggle", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, srv, "POST", "/api/selection/nowhere/"+brass.ID+"/toggle", "").StatusCode)

	resp = do(t, srv, "POST", "/api/draw/game", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, azul, decode[models.Game](t, resp))
	assert.Equal(t, http.StatusConflict, do(t, srv, "POST", "/api/draw/game", "").StatusCode, "drawn game is disabled")

	assert.Equal(t, http.StatusNoContent, do(t, srv, "PUT", "/api/selection/roulette", `{"enabled":true}`).StatusCode)
	resp = do(t, srv, "POST", "/api/draw/game", `{"query":"econ"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, brass, decode[models.Game](t, resp))

	resp = do(t, srv, "POST", "/api/draw/first", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alice", decode[models.Participant](t, resp).Name)
	assert.Equal(t, http.StatusConflict, do(t, srv, "POST", "/api/draw/first", `{"ids":["ghost"]}`).StatusCode)

	resp = do(t, srv, "POST", "/api/dice", `{"count":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dice := decode[diceResponse](t, resp)
	require.Len(t, dice.Values, 3)
	assert.Equal(t, dice.Values[0]+dice.Values[1]+dice.Values[2], dice.Sum)

	resp = do(t, srv, "POST", "/api/dice?count=500", "")
	assert.Len(t, decode[diceResponse](t, resp).Values, 30)
}

func TestStateFeed(t *testing.T) {
	srv, tr := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", &websocket.DialOptions{
		Subprotocols: []string{"state"},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	readState := func() map[string]json.RawMessage {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := readState()
	assert.JSONEq(t, `"state"`, string(first["type"]))
	assert.JSONEq(t, `[]`, string(first["games"]))

	tr.AddGame(context.Background(), "Azul", "", models.WeightLight)
	next := readState()
	var games []models.Game
	require.NoError(t, json.Unmarshal(next["games"], &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Azul", games[0].Name)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`)))
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestHeartbeatAndCORS(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tr := tracker.New(storage.NewMemoryStore(), logger, tracker.Options{})
	tr.Load(context.Background())
	srv := httptest.NewServer(NewRouter(logger, tr, []string{"http://localhost:5173"}))
	defer srv.Close()

	resp := do(t, srv, "GET", "/ping", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/games", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	preflight, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer preflight.Body.Close()
	assert.Equal(t, "http://localhost:5173", preflight.Header.Get("Access-Control-Allow-Origin"))
}
