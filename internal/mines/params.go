package mines

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
)

type GameParams struct {
	Size, MineCount int
	Seed            uint64
}

func (p GameParams) Validate() error {
	if p.Size < 1 {
		return fmt.Errorf("%w: size %d must be positive", ErrInvalidConfiguration, p.Size)
	}
	if p.MineCount <= 0 || p.MineCount >= p.Size*p.Size {
		return fmt.Errorf(
			"%w: mine count %d must be within (0, %d)",
			ErrInvalidConfiguration, p.MineCount, p.Size*p.Size,
		)
	}
	return nil
}

// String encodes the params as "size:mines:seed"; the same string always
// produces the same board.
func (p GameParams) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Size, p.MineCount, p.Seed)
}

// ParseGameParams is the inverse of GameParams.String. Exactly three fields
// are accepted.
func ParseGameParams(s string) (*GameParams, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return nil, fmt.Errorf(
			`invalid game params (s = "%s", want size:mines:seed)`, s,
		)
	}

	p := &GameParams{}
	var err error
	if p.Size, err = strconv.Atoi(fields[0]); err != nil {
		return nil, fmt.Errorf(`invalid game params size (s = "%s", err = %w)`, s, err)
	}
	if p.MineCount, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fmt.Errorf(`invalid game params mine count (s = "%s", err = %w)`, s, err)
	}
	if p.Seed, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
		return nil, fmt.Errorf(`invalid game params seed (s = "%s", err = %w)`, s, err)
	}
	return p, nil
}

func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// SeedFromString turns free text into a seed, so players can share a board by
// a word instead of a number.
func SeedFromString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// ParseSeed reads s as a decimal seed, falling back to SeedFromString for any
// other text.
func ParseSeed(s string) uint64 {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	return SeedFromString(s)
}

func (p GameParams) NewBoard() (*Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewBoard(p.Size, p.MineCount, NewRand(p.Seed))
}
