package handlers

import (
	"fmt"
	"strings"
)

type GameMove uint8

const (
	Open GameMove = iota + 1
	Flag
	Chord
)

var moveNames = map[GameMove]string{
	Open:  "open",
	Flag:  "flag",
	Chord: "chord",
}

func (m GameMove) String() string {
	if name, ok := moveNames[m]; ok {
		return name
	}
	return fmt.Sprintf("GameMove(%d)", m)
}

var ErrBadMove = fmt.Errorf("move must be one of 'open', 'flag', 'chord'")

func ParseGameMove(s string) (GameMove, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	default:
		return 0, ErrBadMove
	}
}
