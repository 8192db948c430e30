package mines

import (
	"fmt"
	"iter"
	"math/rand/v2"
)

// Cell is the fixed content of a board square: Mine, or the number of mines
// among its neighbours (0 to 8).
type Cell int8

const Mine Cell = -1

func (c Cell) IsMine() bool {
	return c == Mine
}

// Count returns the neighbouring mine count, or -1 for a mine.
func (c Cell) Count() int {
	return int(c)
}

func (c Cell) String() string {
	if c == Mine {
		return "mine"
	}
	return fmt.Sprintf("count(%d)", int(c))
}

type Outcome uint8

const (
	Safe Outcome = iota
	Unsafe
)

func (o Outcome) String() string {
	if o == Unsafe {
		return "unsafe"
	}
	return "safe"
}

type Point struct {
	Row, Col int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is a square minefield. Cells are fixed at construction; the revealed
// set only ever grows. A Board is not safe for concurrent use.
type Board struct {
	size      int
	mineCount int
	cells     []Cell
	revealed  []bool
	nrevealed int
}

// NewBoard places mineCount mines on a size×size board by drawing positions
// uniformly from r until mineCount distinct ones are found, then computes the
// neighbour counts of every other cell.
func NewBoard(size, mineCount int, r *rand.Rand) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d must be positive", ErrInvalidConfiguration, size)
	}
	if mineCount <= 0 || mineCount >= size*size {
		return nil, fmt.Errorf(
			"%w: mine count %d must be within (0, %d)",
			ErrInvalidConfiguration, mineCount, size*size,
		)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfiguration)
	}

	b := &Board{
		size:      size,
		mineCount: mineCount,
		cells:     make([]Cell, size*size),
		revealed:  make([]bool, size*size),
	}

	for placed := 0; placed < mineCount; {
		i := r.IntN(len(b.cells))
		if b.cells[i] == Mine {
			continue
		}
		b.cells[i] = Mine
		placed++
	}

	for i := range b.cells {
		if b.cells[i] == Mine {
			continue
		}
		var n Cell
		for j := range b.neighbors(i) {
			if b.cells[j] == Mine {
				n++
			}
		}
		b.cells[i] = n
	}

	return b, nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) MineCount() int {
	return b.mineCount
}

func (b *Board) RevealedCount() int {
	return b.nrevealed
}

// Cleared reports whether every non-mine cell has been revealed.
func (b *Board) Cleared() bool {
	return b.nrevealed == len(b.cells)-b.mineCount
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.size && 0 <= col && col < b.size
}

func (b *Board) index(row, col int) (int, error) {
	if !b.InBounds(row, col) {
		return 0, fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, row, col, b.size, b.size)
	}
	return row*b.size + col, nil
}

func (b *Board) point(i int) Point {
	return Point{Row: i / b.size, Col: i % b.size}
}

func (b *Board) IsRevealed(row, col int) (bool, error) {
	i, err := b.index(row, col)
	if err != nil {
		return false, err
	}
	return b.revealed[i], nil
}

// CellKind returns the content of a cell whether or not it has been revealed.
// Masking hidden cells is up to the caller.
func (b *Board) CellKind(row, col int) (Cell, error) {
	i, err := b.index(row, col)
	if err != nil {
		return 0, err
	}
	return b.cells[i], nil
}

// Reveal uncovers a cell. A zero cell cascades to its whole connected zero
// region and the numbered cells bordering it. Revealing a cell twice is a
// no-op reporting the same outcome.
func (b *Board) Reveal(row, col int) (Outcome, error) {
	i, err := b.index(row, col)
	if err != nil {
		return Safe, err
	}
	if b.revealed[i] {
		return outcomeOf(b.cells[i]), nil
	}

	b.markRevealed(i)

	switch {
	case b.cells[i] == Mine:
		return Unsafe, nil
	case b.cells[i] > 0:
		return Safe, nil
	}

	todo := newCelltodo(len(b.cells))
	todo.add(i)
	for !todo.empty() {
		j := todo.pop()
		for k := range b.neighbors(j) {
			if b.revealed[k] {
				continue
			}
			// neighbours of a zero cell are never mines
			b.markRevealed(k)
			if b.cells[k] == 0 {
				todo.add(k)
			}
		}
	}

	return Safe, nil
}

func (b *Board) markRevealed(i int) {
	b.revealed[i] = true
	b.nrevealed++
}

func outcomeOf(c Cell) Outcome {
	if c == Mine {
		return Unsafe
	}
	return Safe
}

// neighbors yields the indices of the up to 8 cells around i, clipped to the
// board.
func (b *Board) neighbors(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		row, col := i/b.size, i%b.size
		for r := max(0, row-1); r <= min(b.size-1, row+1); r++ {
			for c := max(0, col-1); c <= min(b.size-1, col+1); c++ {
				if r == row && c == col {
					continue
				}
				if !yield(r*b.size + c) {
					return
				}
			}
		}
	}
}

// Neighbors yields the in-bounds points around p.
func (b *Board) Neighbors(p Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		i, err := b.index(p.Row, p.Col)
		if err != nil {
			return
		}
		for j := range b.neighbors(i) {
			if !yield(b.point(j)) {
				return
			}
		}
	}
}
