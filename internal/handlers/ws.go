package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type wsCommand string

const (
	wsNoop    wsCommand = "g"
	wsOpen    wsCommand = "o"
	wsFlag    wsCommand = "f"
	wsChord   wsCommand = "c"
	wsForfeit wsCommand = "r"
)

// Maps known commands to number of arguments
var commandNargs = map[wsCommand]int{
	wsNoop:    0,
	wsOpen:    2,
	wsFlag:    2,
	wsChord:   2,
	wsForfeit: 0,
}

var errUnknownCommand = errors.New("unknown command")

func parseRowCol(args []string) (pos Position, err error) {
	if pos.Row, err = strconv.Atoi(args[0]); err != nil {
		return pos, fmt.Errorf("row must be an int")
	}
	if pos.Col, err = strconv.Atoi(args[1]); err != nil {
		return pos, fmt.Errorf("col must be an int")
	}
	return pos, nil
}

// executeCommand runs one line of the websocket protocol, e.g. "o 3 4".
func executeCommand(game *mines.GameState, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	nargs, ok := commandNargs[cmd]
	if !ok {
		return errUnknownCommand
	}
	if nargs != len(args) {
		return fmt.Errorf("command %q takes %d arguments, got %d", cmd, nargs, len(args))
	}

	switch cmd {
	case wsNoop:
		return nil
	case wsForfeit:
		game.Forfeit()
		return nil
	}

	pos, err := parseRowCol(args)
	if err != nil {
		return err
	}
	switch cmd {
	case wsOpen:
		return applyMove(game, Open, pos)
	case wsFlag:
		return applyMove(game, Flag, pos)
	default:
		return applyMove(game, Chord, pos)
	}
}

// runCommands executes the lines of one message, stopping at the first
// error or once the game is over.
func runCommands(session *repository.GameSession, message string) error {
	return session.Update(func(game *mines.GameState) error {
		for _, line := range strings.Split(message, "\n") {
			if err := executeCommand(game, line); err != nil {
				return err
			}
			if game.Over() {
				break
			}
		}
		return nil
	})
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionId(r)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if !authorized(r, id) {
		g.sendError(w, r, errUnauthorized)
		return
	}

	if err := g.repo.WithGameSession(r.Context(), id, func(*repository.GameSession) error {
		return nil
	}); err != nil {
		g.sendError(w, r, err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(g.ws.ReadLimit)

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		message := strings.TrimSpace(string(buf))
		g.logger.Debug("ws command", slog.String("id", id.String()), slog.String("message", message))

		var reply any
		sessionErr := g.repo.WithGameSession(r.Context(), id, func(s *repository.GameSession) error {
			if err := runCommands(s, message); err != nil {
				reply = wrapError(err)
				return nil
			}
			reply = NewGameSessionDTO(s)
			return nil
		})
		if sessionErr != nil {
			g.logger.Warn("game session gone", slog.String("id", id.String()), slog.Any("error", sessionErr))
			reply = wrapError(sessionErr)
		}

		conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			g.logger.Error("unable to write json", slog.Any("error", err))
			return
		}
		if sessionErr != nil {
			return
		}
	}
}
