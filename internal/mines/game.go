package mines

import (
	"log/slog"
)

var Log *slog.Logger = slog.Default()

// GameState is one play session over a Board: the player's flags and whether
// the game has been lost or won. Flags never touch the Board. A forfeited game
// is Dead with Forfeited set.
type GameState struct {
	GameParams
	Dead, Won, Forfeited bool

	board  *Board
	flags  []bool
	nflags int
}

func NewGame(params GameParams) (*GameState, error) {
	board, err := params.NewBoard()
	if err != nil {
		return nil, err
	}
	Log.Debug("new game", slog.String("params", params.String()))
	return &GameState{
		GameParams: params,
		board:      board,
		flags:      make([]bool, len(board.cells)),
	}, nil
}

func (s *GameState) Board() *Board {
	return s.board
}

func (s *GameState) Over() bool {
	return s.Dead || s.Won
}

// Dig reveals a cell. It does nothing once the game is over or when the cell
// is flagged.
func (s *GameState) Dig(row, col int) (Outcome, error) {
	i, err := s.board.index(row, col)
	if err != nil {
		return Safe, err
	}
	if s.Over() || s.flags[i] {
		return s.status(), nil
	}

	outcome, err := s.board.Reveal(row, col)
	if err != nil {
		return outcome, err
	}

	if outcome == Unsafe {
		s.Dead = true
		return outcome, nil
	}

	// a cascade may run over flags placed on safe cells
	if s.nflags > 0 {
		for j, flagged := range s.flags {
			if flagged && s.board.revealed[j] {
				s.flags[j] = false
				s.nflags--
			}
		}
	}

	if s.board.Cleared() {
		s.Won = true
	}

	return outcome, nil
}

func (s *GameState) status() Outcome {
	if s.Dead {
		return Unsafe
	}
	return Safe
}

// ToggleFlag marks or unmarks a hidden cell as a suspected mine.
func (s *GameState) ToggleFlag(row, col int) error {
	i, err := s.board.index(row, col)
	if err != nil {
		return err
	}
	if s.Over() || s.board.revealed[i] {
		return nil
	}
	s.flags[i] = !s.flags[i]
	if s.flags[i] {
		s.nflags++
	} else {
		s.nflags--
	}
	return nil
}

func (s *GameState) IsFlagged(row, col int) (bool, error) {
	i, err := s.board.index(row, col)
	if err != nil {
		return false, err
	}
	return s.flags[i], nil
}

// Chord digs every unflagged hidden neighbour of a revealed numbered cell once
// the number of flags around it matches its count.
func (s *GameState) Chord(row, col int) (Outcome, error) {
	i, err := s.board.index(row, col)
	if err != nil {
		return Safe, err
	}
	if s.Over() || !s.board.revealed[i] || s.board.cells[i] <= 0 {
		return s.status(), nil
	}

	var (
		m      int
		hidden = make([]Point, 0, 8)
	)
	for p := range s.board.Neighbors(Point{Row: row, Col: col}) {
		j := p.Row*s.board.size + p.Col
		if s.flags[j] {
			m++
		} else if !s.board.revealed[j] {
			hidden = append(hidden, p)
		}
	}
	if m != int(s.board.cells[i]) {
		return Safe, nil
	}

	for _, p := range hidden {
		if _, err := s.Dig(p.Row, p.Col); err != nil {
			return s.status(), err
		}
		if s.Over() {
			break
		}
	}
	return s.status(), nil
}

func (s *GameState) Forfeit() {
	if !s.Over() {
		s.Dead = true
		s.Forfeited = true
	}
}

func (s *GameState) FlagCount() int {
	return s.nflags
}

// RemainingMines estimates the mines left to find as the mine count minus
// the flags placed, floored at zero. Misplaced flags are not accounted for.
func (s *GameState) RemainingMines() int {
	return max(0, s.board.mineCount-s.nflags)
}

func (s *GameState) RevealedCount() int {
	return s.board.nrevealed
}

// PlayerGrid is the board as the player sees it. Mines stay hidden until the
// game is over.
func (s *GameState) PlayerGrid() Grid {
	grid := make(Grid, len(s.board.cells))
	over := s.Over()
	for i, c := range s.board.cells {
		switch {
		case s.board.revealed[i] && c == Mine:
			grid[i] = ExplodedMine
		case s.board.revealed[i]:
			grid[i] = CellState(c)
		case s.flags[i] && over && c == Mine:
			grid[i] = CorrectlyFlagged
		case s.flags[i] && over:
			grid[i] = FalselyFlagged
		case s.flags[i]:
			grid[i] = Flagged
		case over && c == Mine:
			grid[i] = UnflaggedMine
		default:
			grid[i] = Unknown
		}
	}
	return grid
}

// GameState implements [fmt.Stringer]
func (s *GameState) String() string {
	return s.PlayerGrid().ToString(s.board.size)
}
