package mines

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	UnknownGlyph = "□"
	MineGlyph    = "*"
)

// CellState is what a player is allowed to see of a cell.
//
//   - 0 to 8 mean the square is open and has a surrounding mine count.
//   - -1 means the square is flagged by the player.
//   - -2 means the square is unknown.
//   - 64 means a flagged mine revealed when the game ended.
//   - 65 means the mine the player hit.
//   - 66 means a flag placed on a square with no mine.
//   - 67 means an unflagged mine revealed when the game ended.
type CellState int8

const (
	Unknown          CellState = -2
	Flagged          CellState = -1
	CorrectlyFlagged CellState = 64
	ExplodedMine     CellState = 65
	FalselyFlagged   CellState = 66
	UnflaggedMine    CellState = 67
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return UnknownGlyph
	case s == Flagged, s == CorrectlyFlagged:
		return "F"
	case s == FalselyFlagged:
		return "x"
	case s == ExplodedMine:
		return "#"
	case s == UnflaggedMine:
		return MineGlyph
	case s == 0:
		return " "
	case 0 < s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

type Grid []CellState

// ToString lays the grid out with row and column indices.
func (g Grid) ToString(size int) string {
	return renderRows(size, func(i int) string {
		if i >= len(g) {
			return ""
		}
		return g[i].String()
	})
}

// Render draws the board as text. Hidden cells are drawn as UnknownGlyph
// unless revealAll is set.
func Render(b *Board, revealAll bool) string {
	return renderRows(b.size, func(i int) string {
		if !revealAll && !b.revealed[i] {
			return UnknownGlyph
		}
		switch c := b.cells[i]; {
		case c == Mine:
			return MineGlyph
		case c == 0:
			return " "
		default:
			return strconv.Itoa(int(c))
		}
	})
}

func renderRows(size int, glyph func(i int) string) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for col := range size {
		if col > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%2d", col)
	}
	sb.WriteString("\n   " + strings.Repeat("--", size) + "-\n")
	for row := range size {
		fmt.Fprintf(&sb, "%2d| ", row)
		for col := range size {
			if col > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%-2s", glyph(row*size+col))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
