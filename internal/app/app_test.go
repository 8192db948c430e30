package app

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/handlers"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.App{
		Port:          ":0",
		MaxSize:       30,
		SessionTTL:    time.Hour,
		SweepInterval: time.Minute,
		TokenLifetime: time.Hour,

		AllowedOrigins: []string{"https://mines.example"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := NewWithJWT(logger, cfg, config.NewJWTFromKey(key, time.Hour))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// seedWithMineAt finds a seed that puts one of the mines at p.
func seedWithMineAt(t *testing.T, size, mineCount int, p mines.Point) uint64 {
	t.Helper()
	for seed := range uint64(100_000) {
		b, err := mines.GameParams{Size: size, MineCount: mineCount, Seed: seed}.NewBoard()
		require.NoError(t, err)
		if c, _ := b.CellKind(p.Row, p.Col); c.IsMine() {
			return seed
		}
	}
	t.Fatalf("no seed places a mine at %v", p)
	return 0
}

func do(t *testing.T, method, url, token string, v any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func newGame(t *testing.T, srv *httptest.Server, query string) handlers.NewGameResponse {
	t.Helper()
	var res handlers.NewGameResponse
	status := do(t, http.MethodPost, srv.URL+"/game?"+query, "", &res)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, res.Token)
	return res
}

func TestNewGameAndWin(t *testing.T) {
	srv := setupServer(t)
	seed := seedWithMineAt(t, 4, 1, mines.Point{Row: 3, Col: 3})

	created := newGame(t, srv, fmt.Sprintf("size=4&mine_count=1&seed=%d", seed))
	game := created.Game
	assert.Equal(t, 4, game.Size)
	assert.Equal(t, 1, game.MineCount)
	assert.Equal(t, 0, game.RevealedCount)
	assert.Nil(t, game.Params)
	for _, c := range game.Grid {
		assert.Equal(t, mines.Unknown, c)
	}

	var moved handlers.GameSessionDTO
	url := srv.URL + "/game/" + game.GameSessionId + "/move?move=open&row=0&col=0"
	status := do(t, http.MethodPost, url, created.Token, &moved)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, moved.Won)
	assert.False(t, moved.Dead)
	assert.Equal(t, 15, moved.RevealedCount)
	require.NotNil(t, moved.Params)
	assert.Equal(t, fmt.Sprintf("4:1:%d", seed), *moved.Params)
	assert.NotNil(t, moved.EndedAt)
	assert.Equal(t, mines.UnflaggedMine, moved.Grid[15])

	var fetched handlers.GameSessionDTO
	status = do(t, http.MethodGet, srv.URL+"/game/"+game.GameSessionId, "", &fetched)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, moved, fetched)
}

func TestSameSeedSameBoard(t *testing.T) {
	srv := setupServer(t)

	reveal := func() []mines.CellState {
		created := newGame(t, srv, "size=8&mine_count=10&seed=buscaminas")
		var res handlers.GameSessionDTO
		url := srv.URL + "/game/" + created.Game.GameSessionId + "/forfeit"
		require.Equal(t, http.StatusOK, do(t, http.MethodPost, url, created.Token, &res))
		assert.True(t, res.Dead)
		assert.True(t, res.Forfeited)
		assert.NotNil(t, res.Params)
		return res.Grid
	}
	assert.Equal(t, reveal(), reveal())
}

func TestNewGameRejectsBadParams(t *testing.T) {
	srv := setupServer(t)

	for _, query := range []string{
		"",
		"size=4",
		"size=4&mine_count=0",
		"size=4&mine_count=16",
		"size=1&mine_count=1",
		"size=31&mine_count=10",
		"size=x&mine_count=1",
	} {
		var res map[string]string
		status := do(t, http.MethodPost, srv.URL+"/game?"+query, "", &res)
		assert.Equal(t, http.StatusBadRequest, status, "query %q", query)
		assert.NotEmpty(t, res["error"], "query %q", query)
	}
}

func TestMoveErrors(t *testing.T) {
	srv := setupServer(t)
	a := newGame(t, srv, "size=5&mine_count=3")
	b := newGame(t, srv, "size=5&mine_count=3")
	base := srv.URL + "/game/" + a.Game.GameSessionId

	tests := []struct {
		name   string
		url    string
		token  string
		status int
	}{
		{"no token", base + "/move?move=open&row=0&col=0", "", http.StatusUnauthorized},
		{"other session token", base + "/move?move=open&row=0&col=0", b.Token, http.StatusUnauthorized},
		{"bad move", base + "/move?move=dance&row=0&col=0", a.Token, http.StatusBadRequest},
		{"missing position", base + "/move?move=open", a.Token, http.StatusBadRequest},
		{"out of bounds", base + "/move?move=open&row=5&col=0", a.Token, http.StatusBadRequest},
		{"negative", base + "/move?move=flag&row=0&col=-1", a.Token, http.StatusBadRequest},
		{"bad id", srv.URL + "/game/nope/move?move=open&row=0&col=0", a.Token, http.StatusBadRequest},
		{"forfeit without token", base + "/forfeit", "", http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status := do(t, http.MethodPost, test.url, test.token, nil)
			assert.Equal(t, test.status, status)
		})
	}

	var fetched handlers.GameSessionDTO
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base, "", &fetched))
	assert.Equal(t, 0, fetched.RevealedCount)
	assert.Equal(t, 0, fetched.FlagCount)
}

func TestFetchUnknownSession(t *testing.T) {
	srv := setupServer(t)
	status := do(t, http.MethodGet, srv.URL+"/game/6f1c2d3e-0000-4000-8000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatus(t *testing.T) {
	srv := setupServer(t)
	newGame(t, srv, "size=5&mine_count=3")

	var res map[string]any
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/status", "", &res))
	assert.Equal(t, "ok", res["status"])
	assert.Equal(t, float64(1), res["sessions"])
}

func TestWebSocket(t *testing.T) {
	srv := setupServer(t)
	seed := seedWithMineAt(t, 4, 1, mines.Point{Row: 3, Col: 3})
	created := newGame(t, srv, fmt.Sprintf("size=4&mine_count=1&seed=%d", seed))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/game/" + created.Game.GameSessionId + "/connect?token=" + created.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var state handlers.GameSessionDTO
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("f 3 3\nf 2 2\nf 2 2")))
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, 1, state.FlagCount)
	assert.Equal(t, 0, state.RemainingMines)
	assert.Equal(t, mines.Flagged, state.Grid[15])

	var failure map[string]string
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("x 1 1")))
	require.NoError(t, conn.ReadJSON(&failure))
	assert.NotEmpty(t, failure["error"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("o 0 0")))
	require.NoError(t, conn.ReadJSON(&state))
	assert.True(t, state.Won)
	assert.Equal(t, 15, state.RevealedCount)
	assert.Equal(t, mines.CorrectlyFlagged, state.Grid[15])
}

func TestWebSocketRequiresToken(t *testing.T) {
	srv := setupServer(t)
	created := newGame(t, srv, "size=5&mine_count=3")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + created.Game.GameSessionId + "/connect"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestDeleteGame(t *testing.T) {
	srv := setupServer(t)
	a := newGame(t, srv, "size=5&mine_count=3")
	b := newGame(t, srv, "size=5&mine_count=3")
	url := srv.URL + "/game/" + a.Game.GameSessionId

	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodDelete, url, "", nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodDelete, url, b.Token, nil))
	assert.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, url, a.Token, nil))

	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, url, "", nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodDelete, url, a.Token, nil))

	var res map[string]any
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/status", "", &res))
	assert.Equal(t, float64(1), res["sessions"])
}

func TestCorsPreflight(t *testing.T) {
	srv := setupServer(t)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/game/x", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res
	}

	res := preflight("https://mines.example")
	assert.Equal(t, "https://mines.example", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)

	res = preflight("https://evil.example")
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	srv := setupServer(t)
	created := newGame(t, srv, "size=5&mine_count=3")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/game/" + created.Game.GameSessionId + "/connect?token=" + created.Token
	_, res, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
