package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

var errUnauthorized = errors.New("a valid token for this game session is required")

type GameHandler struct {
	logger  *slog.Logger
	repo    *repository.Queries
	jwt     *config.JWT
	ws      *config.WebSocket
	maxSize int

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	repo *repository.Queries,
	jwt *config.JWT,
	ws *config.WebSocket,
	maxSize int,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		logger:  logger,
		repo:    repo,
		jwt:     jwt,
		ws:      ws,
		maxSize: maxSize,
		rnd:     rnd,
	}
}

func (g *GameHandler) randomSeed() uint64 {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	return g.rnd.Uint64()
}

func parseSessionId(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid game session id: %w", err)
	}
	return id, nil
}

func authorized(r *http.Request, id uuid.UUID) bool {
	claims, ok := middleware.SessionClaims(r.Context())
	return ok && claims.SessionId == id.String()
}

// statusOf maps a game error to the HTTP status it should be reported with.
func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, mines.ErrInvalidConfiguration),
		errors.Is(err, ErrBadMove):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (g *GameHandler) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		g.logger.Error(
			"unable to handle request",
			slog.String("requestId", middleware.RequestId(r.Context())),
			slog.Any("error", err),
		)
	}
	sendErrorOrLog(w, g.logger, status, err)
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateNewGameDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if dto.Size > g.maxSize {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest,
			fmt.Errorf("%w: size %d exceeds %d", mines.ErrInvalidConfiguration, dto.Size, g.maxSize),
		)
		return
	}

	seed, ok := dto.seed()
	if !ok {
		seed = g.randomSeed()
	}
	params := mines.GameParams{Size: dto.Size, MineCount: dto.MineCount, Seed: seed}

	game, err := mines.NewGame(params)
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	id, err := g.repo.CreateGameSession(r.Context(), game)
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	token, err := g.jwt.SignSession(id.String())
	if err != nil {
		g.sendError(w, r, fmt.Errorf("unable to sign session token: %w", err))
		return
	}

	g.logger.Debug("created game session",
		slog.String("id", id.String()),
		slog.Int("size", params.Size),
		slog.Int("mineCount", params.MineCount),
	)

	var res NewGameResponse
	err = g.repo.WithGameSession(r.Context(), id, func(s *repository.GameSession) error {
		res = NewGameResponse{Token: token, Game: NewGameSessionDTO(s)}
		return nil
	})
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	sendJSONOrLog(w, g.logger, http.StatusCreated, res)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionId(r)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	var dto *GameSessionDTO
	err = g.repo.WithGameSession(r.Context(), id, func(s *repository.GameSession) error {
		dto = NewGameSessionDTO(s)
		return nil
	})
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

func applyMove(game *mines.GameState, move GameMove, pos Position) error {
	var err error
	switch move {
	case Open:
		_, err = game.Dig(pos.Row, pos.Col)
	case Flag:
		err = game.ToggleFlag(pos.Row, pos.Col)
	case Chord:
		_, err = game.Chord(pos.Row, pos.Col)
	default:
		err = ErrBadMove
	}
	return err
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	move, err := ParseGameMove(query.Get("move"))
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	id, err := parseSessionId(r)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if !authorized(r, id) {
		g.sendError(w, r, errUnauthorized)
		return
	}

	var dto *GameSessionDTO
	err = g.repo.WithGameSession(r.Context(), id, func(s *repository.GameSession) error {
		err := s.Update(func(game *mines.GameState) error {
			return applyMove(game, move, pos)
		})
		if err != nil {
			return err
		}
		dto = NewGameSessionDTO(s)
		return nil
	})
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionId(r)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if !authorized(r, id) {
		g.sendError(w, r, errUnauthorized)
		return
	}

	var dto *GameSessionDTO
	err = g.repo.WithGameSession(r.Context(), id, func(s *repository.GameSession) error {
		err := s.Update(func(game *mines.GameState) error {
			game.Forfeit()
			return nil
		})
		if err != nil {
			return err
		}
		dto = NewGameSessionDTO(s)
		return nil
	})
	if err != nil {
		g.sendError(w, r, err)
		return
	}

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

// Delete drops a game session. Only the holder of its token may do so.
func (g *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionId(r)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if !authorized(r, id) {
		g.sendError(w, r, errUnauthorized)
		return
	}

	if err := g.repo.DeleteGameSession(r.Context(), id); err != nil {
		g.sendError(w, r, err)
		return
	}

	g.logger.Debug("deleted game session", slog.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (g *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": g.repo.Count(),
	})
}
