package handlers

import (
	"time"

	"github.com/gorilla/schema"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

type CreateNewGameDTO struct {
	Size      int     `schema:"size,required"`
	MineCount int     `schema:"mine_count,required"`
	Seed      *string `schema:"seed"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// seed accepts either a number or free text. ok is false when no seed was
// supplied.
func (dto CreateNewGameDTO) seed() (seed uint64, ok bool) {
	if dto.Seed == nil || *dto.Seed == "" {
		return 0, false
	}
	return mines.ParseSeed(*dto.Seed), true
}

type Position struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src map[string][]string) (Position, error) {
	var pos Position
	err := decoder.Decode(&pos, src)
	return pos, err
}

type GameSessionDTO struct {
	GameSessionId  string     `json:"game_session_id"`
	Grid           mines.Grid `json:"grid"`
	Size           int        `json:"size"`
	MineCount      int        `json:"mine_count"`
	RevealedCount  int        `json:"revealed_count"`
	FlagCount      int        `json:"flag_count"`
	RemainingMines int        `json:"remaining_mines"`
	Dead           bool       `json:"dead"`
	Won            bool       `json:"won"`
	Forfeited      bool       `json:"forfeited"`
	Params         *string    `json:"params,omitempty"`
	StartedAt      int64      `json:"started_at"`
	EndedAt        *int64     `json:"ended_at,omitempty"`
}

// NewGameSessionDTO must be called while holding the session. The params
// string gives away the layout, so it is only sent once the game is over.
func NewGameSessionDTO(s *repository.GameSession) *GameSessionDTO {
	g := s.State
	dto := &GameSessionDTO{
		GameSessionId:  s.GameSessionId.String(),
		Grid:           g.PlayerGrid(),
		Size:           g.Size,
		MineCount:      g.MineCount,
		RevealedCount:  g.RevealedCount(),
		FlagCount:      g.FlagCount(),
		RemainingMines: g.RemainingMines(),
		Dead:           g.Dead,
		Won:            g.Won,
		Forfeited:      g.Forfeited,
		StartedAt:      s.StartedAt.UnixMilli(),
	}
	if g.Over() {
		params := g.GameParams.String()
		dto.Params = &params
	}
	dto.EndedAt = endedAt(s.EndedAt)
	return dto
}

type NewGameResponse struct {
	Token string          `json:"token"`
	Game  *GameSessionDTO `json:"game"`
}

func endedAt(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	e := t.UnixMilli()
	return &e
}
