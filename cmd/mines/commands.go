package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type command string

const (
	cmdOpen  command = "o"
	cmdFlag  command = "f"
	cmdChord command = "c"
	cmdQuit  command = "q"
)

// Maps known commands to number of arguments
var commandNargs = map[command]int{
	cmdOpen:  2,
	cmdFlag:  2,
	cmdChord: 2,
	cmdQuit:  0,
}

var (
	errUnknownCommand = errors.New("unknown command, use row,col or f row,col")
	errNargs          = errors.New("invalid number of arguments")
)

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("row must be an int")
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("col must be an int")
		return
	}
	return
}

type move struct {
	cmd      command
	row, col int
}

// parseMove reads one line of input. A bare "row,col" digs; a leading
// command letter picks another action.
func parseMove(line string) (move, error) {
	parts := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(parts) == 0 {
		return move{}, errUnknownCommand
	}
	if _, err := strconv.Atoi(parts[0]); err == nil {
		parts = append([]string{string(cmdOpen)}, parts...)
	}

	cmd := command(strings.ToLower(parts[0]))
	nargs, ok := commandNargs[cmd]
	if !ok {
		return move{}, errUnknownCommand
	}
	if nargs != len(parts)-1 {
		return move{}, errNargs
	}
	if nargs == 0 {
		return move{cmd: cmd}, nil
	}

	row, col, err := parseRowCol(parts[1:])
	if err != nil {
		return move{}, err
	}
	return move{cmd: cmd, row: row, col: col}, nil
}

func executeMove(g *mines.GameState, m move) (err error) {
	switch m.cmd {
	case cmdOpen:
		_, err = g.Dig(m.row, m.col)
	case cmdFlag:
		err = g.ToggleFlag(m.row, m.col)
	case cmdChord:
		_, err = g.Chord(m.row, m.col)
	case cmdQuit:
		g.Forfeit()
	default:
		err = errUnknownCommand
	}
	return
}
