package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/minesweeper-engine/internal/handlers"
)

// seedSource draws the seeds of games created without one.
func seedSource() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

type route struct {
	pattern string
	handler http.HandlerFunc
}

func (a *App) routes(game *handlers.GameHandler) []route {
	return []route{
		{"GET /status", game.Status},
		{"POST /game", game.NewGame},
		{"GET /game/{id}", game.Fetch},
		{"DELETE /game/{id}", game.Delete},
		{"POST /game/{id}/move", game.MakeAMove},
		{"POST /game/{id}/forfeit", game.Forfeit},
		{"GET /game/{id}/connect", game.ConnectWS},
	}
}

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.repo, a.jwt, a.ws, a.cfg.MaxSize, seedSource(),
	)
	for _, r := range a.routes(game) {
		a.router.HandleFunc(r.pattern, r.handler)
	}
}
