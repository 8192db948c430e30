package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type GameSession struct {
	mu  sync.Mutex
	now func() time.Time

	GameSessionId uuid.UUID
	State         *mines.GameState
	StartedAt     time.Time
	EndedAt       *time.Time
	UpdatedAt     time.Time
}

func (q *Queries) CreateGameSession(
	ctx context.Context, state *mines.GameState,
) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	now := q.now()
	session := &GameSession{
		now:           q.now,
		GameSessionId: uuid.New(),
		State:         state,
		StartedAt:     now,
		UpdatedAt:     now,
	}

	q.mu.Lock()
	q.sessions[session.GameSessionId] = session
	q.mu.Unlock()

	return session.GameSessionId, nil
}

// Update applies fn to the game and stamps EndedAt the first time the game
// is over.
func (s *GameSession) Update(fn func(*mines.GameState) error) error {
	err := fn(s.State)
	if s.EndedAt == nil && s.State.Over() {
		now := s.now()
		s.EndedAt = &now
	}
	return err
}

// WithGameSession runs fn while holding the session's lock. The session must
// not be retained after fn returns.
func (q *Queries) WithGameSession(
	ctx context.Context, id uuid.UUID, fn func(*GameSession) error,
) error {
	q.mu.RLock()
	session, ok := q.sessions[id]
	q.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn(session)
	session.UpdatedAt = q.now()
	return err
}

func (q *Queries) DeleteGameSession(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(q.sessions, id)
	return nil
}

// DeleteIdleGameSessions drops sessions untouched for longer than ttl.
// Sessions busy with a move are left for the next sweep.
func (q *Queries) DeleteIdleGameSessions(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := q.now().Add(-ttl)

	q.mu.Lock()
	defer q.mu.Unlock()

	deleted := 0
	for id, session := range q.sessions {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if !session.mu.TryLock() {
			continue
		}
		if session.UpdatedAt.Before(cutoff) {
			delete(q.sessions, id)
			deleted++
		}
		session.mu.Unlock()
	}
	return deleted, nil
}
