package session

import (
	"fmt"
	"sync"

	"github.com/gridplay/gridgame-backend/internal/apperror"
	"github.com/gridplay/gridgame-backend/internal/entity"
)

const (
	StatusInProgress = "in_progress"
	StatusWonByX     = "won_by_x"
	StatusWonByO     = "won_by_o"
	StatusDraw       = "draw"
)

// Session is one game's authoritative state machine. A single mutex
// serializes Join, ApplyMove, Leave and Snapshot so that two concurrent
// moves never validate against the same pre-move state.
type Session struct {
	mu sync.Mutex

	id         string
	board      *entity.Board
	activeTurn string
	status     string
	winner     string
	members    map[string]entity.Role
}

// Snapshot is a consistent copy of the full session state, safe to hand
// out after the lock is released.
type Snapshot struct {
	GameID     string
	Rows       int
	Cols       int
	Board      [][]string
	ActiveTurn string
	Status     string
	Winner     string
	Members    []string
}

func New(id string, rows, cols int) (*Session, error) {
	board, err := entity.NewBoard(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return &Session{
		id:         id,
		board:      board,
		activeTurn: entity.MarkX,
		status:     StatusInProgress,
		members:    make(map[string]entity.Role),
	}, nil
}

// Join assigns a role to the connection. A requested player slot held by
// another connection fails with ErrRoleUnavailable rather than silently
// downgrading to spectator; spectator requests always succeed. A member
// may re-join to switch roles when the target slot is free, releasing its
// previous slot.
func (that *Session) Join(connID string, requested entity.Role) (Snapshot, entity.Role, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.members[connID]; ok && current == requested {
		return that.snapshot(), current, nil
	}

	if requested.IsPlayer() && that.slotTaken(requested, connID) {
		return Snapshot{}, "", fmt.Errorf("%w: %s", apperror.ErrRoleUnavailable, requested)
	}

	that.members[connID] = requested

	return that.snapshot(), requested, nil
}

// ApplyMove validates and applies a move for the connection. On success
// the mark is written, the status is recomputed and the turn flips while
// the game is still in progress. Terminal sessions reject every move
// without touching the board.
func (that *Session) ApplyMove(connID string, row, col int) (Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	role, ok := that.members[connID]
	if !ok || !role.IsPlayer() {
		return Snapshot{}, apperror.ErrNotAPlayer
	}

	if that.status != StatusInProgress {
		return Snapshot{}, apperror.ErrGameFinished
	}

	if role.Mark() != that.activeTurn {
		return Snapshot{}, apperror.ErrNotYourTurn
	}

	cell, err := that.board.Get(row, col)
	if err != nil {
		return Snapshot{}, err
	}

	if cell != entity.EmptyCell {
		return Snapshot{}, fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, row, col)
	}

	if err = that.board.Set(row, col, role.Mark()); err != nil {
		return Snapshot{}, err
	}

	that.updateStatus()

	// once terminal the turn is frozen at whatever it last was
	if that.status == StatusInProgress {
		that.activeTurn = toggleMark(that.activeTurn)
	}

	return that.snapshot(), nil
}

// Leave removes the connection's membership, freeing its player slot for
// a future joiner. Reports whether the session is now empty.
func (that *Session) Leave(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.members, connID)

	return len(that.members) == 0
}

func (that *Session) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

func (that *Session) slotTaken(role entity.Role, exceptConnID string) bool {
	for connID, member := range that.members {
		if member == role && connID != exceptConnID {
			return true
		}
	}

	return false
}

// updateStatus recomputes the terminal state after a move; a win takes
// precedence over a draw.
func (that *Session) updateStatus() {
	switch winner := that.board.Winner(); winner {
	case entity.MarkX:
		that.winner = winner
		that.status = StatusWonByX
	case entity.MarkO:
		that.winner = winner
		that.status = StatusWonByO
	default:
		if that.board.IsFull() {
			that.status = StatusDraw
		}
	}
}

func (that *Session) snapshot() Snapshot {
	members := make([]string, 0, len(that.members))
	for connID := range that.members {
		members = append(members, connID)
	}

	return Snapshot{
		GameID:     that.id,
		Rows:       that.board.Rows(),
		Cols:       that.board.Cols(),
		Board:      that.board.Grid(),
		ActiveTurn: that.activeTurn,
		Status:     that.status,
		Winner:     that.winner,
		Members:    members,
	}
}

func (that Snapshot) IsFinished() bool {
	return that.Status != StatusInProgress
}

func toggleMark(currentMark string) string {
	if currentMark == entity.MarkX {
		return entity.MarkO
	}

	return entity.MarkX
}
