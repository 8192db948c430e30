package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("game session not found")

// Queries keeps game sessions in memory. Each session carries its own lock, so
// moves on one game never wait on another.
type Queries struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*GameSession
	now      func() time.Time
}

func New() *Queries {
	return &Queries{
		sessions: make(map[uuid.UUID]*GameSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (q *Queries) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.sessions)
}
