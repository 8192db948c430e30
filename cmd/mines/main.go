package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var log = logrus.New()

var (
	size      int
	mineCount int
	seedText  string
	gameText  string
	logPath   string
	debug     bool
)

func init() {
	flag.IntVar(&size, "size", 10, "board side length")
	flag.IntVar(&mineCount, "mines", 10, "number of mines")
	flag.StringVar(&seedText, "seed", "", "seed, a number or any text (random when empty)")
	flag.StringVar(&gameText, "game", "", "size:mines:seed, overrides the other game flags")
	flag.StringVar(&logPath, "log", "", "log file path (logging is off when empty)")
	flag.BoolVar(&debug, "debug", false, "debug logging")
}

// setupLogging keeps log lines off the terminal, which belongs to the game.
func setupLogging() error {
	log.SetOutput(io.Discard)
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if logPath == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logPath,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     7,
		Level:      level,
		Formatter:  &logrus.TextFormatter{DisableColors: true},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	log.AddHook(hook)
	return nil
}

func gameParams() (*mines.GameParams, error) {
	if gameText != "" {
		return mines.ParseGameParams(gameText)
	}
	p := &mines.GameParams{Size: size, MineCount: mineCount}
	if seedText == "" {
		p.Seed = new(maphash.Hash).Sum64()
	} else {
		p.Seed = mines.ParseSeed(seedText)
	}
	return p, nil
}

func play(in io.Reader, out io.Writer, g *mines.GameState) error {
	sc := bufio.NewScanner(in)
	board := g.Board()

	for !g.Over() {
		fmt.Fprint(out, g.String())
		fmt.Fprintf(out,
			"revealed %d/%d, flags %d, mines left ~%d\n",
			board.RevealedCount(), board.Size()*board.Size()-board.MineCount(),
			g.FlagCount(), g.RemainingMines(),
		)
		fmt.Fprint(out, "dig where? row,col (f row,col flags, c row,col chords, q quits): ")

		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return err
			}
			g.Forfeit()
			break
		}

		m, err := parseMove(sc.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			log.WithError(err).WithField("input", sc.Text()).Debug("bad input")
			continue
		}

		err = executeMove(g, m)
		if errors.Is(err, mines.ErrOutOfBounds) {
			fmt.Fprintln(out, "location outside the board, try again")
			continue
		}
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"cmd": m.cmd, "row": m.row, "col": m.col,
			"revealed": board.RevealedCount(),
		}).Debug("move")
	}

	switch {
	case g.Won:
		fmt.Fprintln(out, "congratulations, you won!")
	case g.Forfeited:
		fmt.Fprintln(out, "you gave up.")
	default:
		fmt.Fprintln(out, "boom! game over.")
	}
	fmt.Fprint(out, mines.Render(board, true))
	fmt.Fprintf(out, "replay this board with -game %s\n", g.GameParams.String())
	return nil
}

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	params, err := gameParams()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	g, err := mines.NewGame(*params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.WithField("params", params.String()).Info("new game")

	if err := play(os.Stdin, os.Stdout, g); err != nil {
		log.WithError(err).Error("game aborted")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{"won": g.Won, "dead": g.Dead}).Info("game over")
}
