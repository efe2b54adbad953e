package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplay/gridgame-backend/internal/apperror"
	"github.com/gridplay/gridgame-backend/internal/entity"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	gameSession, err := New("game-1", 3, 3)
	require.NoError(t, err)

	return gameSession
}

func TestSession_Join(t *testing.T) {
	t.Run("Assigns a free player slot", func(t *testing.T) {
		// Given: a fresh session
		gameSession := newTestSession(t)

		// When: a connection requests PlayerX
		snap, granted, err := gameSession.Join("conn-x", entity.RolePlayerX)

		// Then: the slot is granted and the snapshot shows the initial state
		require.NoError(t, err)
		assert.Equal(t, entity.RolePlayerX, granted)
		assert.Equal(t, entity.MarkX, snap.ActiveTurn)
		assert.Equal(t, StatusInProgress, snap.Status)
		assert.Equal(t, []string{"conn-x"}, snap.Members)
	})

	t.Run("Fails with RoleUnavailable when the slot is taken", func(t *testing.T) {
		// Given: a session where PlayerX is taken
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-1", entity.RolePlayerX)
		require.NoError(t, err)

		// When: another connection requests PlayerX
		_, _, err = gameSession.Join("conn-2", entity.RolePlayerX)

		// Then: it fails instead of silently downgrading to spectator
		require.ErrorIs(t, err, apperror.ErrRoleUnavailable)
	})

	t.Run("Spectators are unbounded", func(t *testing.T) {
		gameSession := newTestSession(t)

		for _, connID := range []string{"watch-1", "watch-2", "watch-3"} {
			_, granted, err := gameSession.Join(connID, entity.RoleSpectator)
			require.NoError(t, err)
			assert.Equal(t, entity.RoleSpectator, granted)
		}

		assert.Len(t, gameSession.Snapshot().Members, 3)
	})

	t.Run("Re-joining with the held role is idempotent", func(t *testing.T) {
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-x", entity.RolePlayerX)
		require.NoError(t, err)

		snap, granted, err := gameSession.Join("conn-x", entity.RolePlayerX)

		require.NoError(t, err)
		assert.Equal(t, entity.RolePlayerX, granted)
		assert.Len(t, snap.Members, 1)
	})

	t.Run("A member may switch to a free slot, releasing the old one", func(t *testing.T) {
		// Given: a connection holding PlayerX
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-1", entity.RolePlayerX)
		require.NoError(t, err)

		// When: it re-joins requesting PlayerO
		_, granted, err := gameSession.Join("conn-1", entity.RolePlayerO)
		require.NoError(t, err)
		assert.Equal(t, entity.RolePlayerO, granted)

		// Then: the X slot is free for someone else
		_, granted, err = gameSession.Join("conn-2", entity.RolePlayerX)
		require.NoError(t, err)
		assert.Equal(t, entity.RolePlayerX, granted)
	})

	t.Run("Exactly one of two concurrent PlayerX joins succeeds", func(t *testing.T) {
		// Given: a fresh session and two racing connections
		gameSession := newTestSession(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)

		for i, connID := range []string{"conn-a", "conn-b"} {
			wg.Add(1)
			go func(i int, connID string) {
				defer wg.Done()
				_, _, errs[i] = gameSession.Join(connID, entity.RolePlayerX)
			}(i, connID)
		}
		wg.Wait()

		// Then: one join succeeded and the other failed with RoleUnavailable
		if errs[0] == nil {
			require.ErrorIs(t, errs[1], apperror.ErrRoleUnavailable)
		} else {
			require.ErrorIs(t, errs[0], apperror.ErrRoleUnavailable)
			require.NoError(t, errs[1])
		}
	})
}

func TestSession_ApplyMove(t *testing.T) {
	join := func(t *testing.T, gameSession *Session, connID string, role entity.Role) {
		t.Helper()
		_, _, err := gameSession.Join(connID, role)
		require.NoError(t, err)
	}

	t.Run("Rejects moves from spectators and strangers", func(t *testing.T) {
		gameSession := newTestSession(t)
		join(t, gameSession, "watcher", entity.RoleSpectator)

		_, err := gameSession.ApplyMove("watcher", 0, 0)
		assert.ErrorIs(t, err, apperror.ErrNotAPlayer)

		_, err = gameSession.ApplyMove("nobody", 0, 0)
		assert.ErrorIs(t, err, apperror.ErrNotAPlayer)
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		// Given: both players joined, X to move
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		// When: O moves first
		_, err := gameSession.ApplyMove("conn-o", 0, 0)

		// Then: the move is rejected and the board is untouched
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		snap := gameSession.Snapshot()
		assert.Equal(t, entity.EmptyCell, snap.Board[0][0])
		assert.Equal(t, entity.MarkX, snap.ActiveTurn)
	})

	t.Run("Rejects out of range and occupied cells", func(t *testing.T) {
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		_, err := gameSession.ApplyMove("conn-x", 3, 0)
		assert.ErrorIs(t, err, apperror.ErrOutOfRange)

		_, err = gameSession.ApplyMove("conn-x", 0, -1)
		assert.ErrorIs(t, err, apperror.ErrOutOfRange)

		_, err = gameSession.ApplyMove("conn-x", 1, 1)
		require.NoError(t, err)

		_, err = gameSession.ApplyMove("conn-o", 1, 1)
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Turn alternates strictly after every accepted move", func(t *testing.T) {
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		snap, err := gameSession.ApplyMove("conn-x", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, snap.ActiveTurn)

		snap, err = gameSession.ApplyMove("conn-o", 1, 0)
		require.NoError(t, err)
		assert.Equal(t, entity.MarkX, snap.ActiveTurn)

		snap, err = gameSession.ApplyMove("conn-x", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, snap.ActiveTurn)
	})

	t.Run("X wins with the top row and further moves are rejected", func(t *testing.T) {
		// Given: both players, X plays (0,0),(0,1),(0,2) with O elsewhere
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		moves := []struct {
			connID   string
			row, col int
		}{
			{"conn-x", 0, 0},
			{"conn-o", 1, 0},
			{"conn-x", 0, 1},
			{"conn-o", 1, 1},
		}
		for _, m := range moves {
			_, err := gameSession.ApplyMove(m.connID, m.row, m.col)
			require.NoError(t, err)
		}

		// When: X completes the row
		snap, err := gameSession.ApplyMove("conn-x", 0, 2)

		// Then: the session is won by X immediately
		require.NoError(t, err)
		assert.Equal(t, StatusWonByX, snap.Status)
		assert.Equal(t, entity.MarkX, snap.Winner)
		assert.True(t, snap.IsFinished())

		// And: a fourth move by either player fails with the finished error
		_, err = gameSession.ApplyMove("conn-o", 2, 2)
		assert.ErrorIs(t, err, apperror.ErrGameFinished)

		_, err = gameSession.ApplyMove("conn-x", 2, 2)
		assert.ErrorIs(t, err, apperror.ErrGameFinished)

		// And: the rejected moves never touched the board
		assert.Equal(t, entity.EmptyCell, gameSession.Snapshot().Board[2][2])
	})

	t.Run("A full board without a line is a draw", func(t *testing.T) {
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		// X X O
		// O O X
		// X O X
		moves := []struct {
			connID   string
			row, col int
		}{
			{"conn-x", 0, 0},
			{"conn-o", 0, 2},
			{"conn-x", 0, 1},
			{"conn-o", 1, 0},
			{"conn-x", 1, 2},
			{"conn-o", 1, 1},
			{"conn-x", 2, 0},
			{"conn-o", 2, 1},
		}
		for _, m := range moves {
			_, err := gameSession.ApplyMove(m.connID, m.row, m.col)
			require.NoError(t, err)
		}

		snap, err := gameSession.ApplyMove("conn-x", 2, 2)

		require.NoError(t, err)
		assert.Equal(t, StatusDraw, snap.Status)
		assert.Equal(t, entity.EmptyCell, snap.Winner)
	})

	t.Run("Concurrent moves never both validate against the same state", func(t *testing.T) {
		// Given: both players racing to claim the same cell
		gameSession := newTestSession(t)
		join(t, gameSession, "conn-x", entity.RolePlayerX)
		join(t, gameSession, "conn-o", entity.RolePlayerO)

		var wg sync.WaitGroup
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = gameSession.ApplyMove("conn-x", 0, 0)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = gameSession.ApplyMove("conn-o", 0, 0)
		}()
		wg.Wait()

		// Then: exactly one move was accepted
		xMoved := errs[0] == nil
		oMoved := errs[1] == nil
		assert.NotEqual(t, xMoved, oMoved)

		snap := gameSession.Snapshot()
		if xMoved {
			assert.Equal(t, entity.MarkX, snap.Board[0][0])
		} else {
			assert.Equal(t, entity.MarkO, snap.Board[0][0])
		}
	})
}

func TestSession_Leave(t *testing.T) {
	t.Run("Leaving frees the slot for a replacement mid-game", func(t *testing.T) {
		// Given: a game in progress with one X move placed
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-x", entity.RolePlayerX)
		require.NoError(t, err)
		_, _, err = gameSession.Join("conn-o", entity.RolePlayerO)
		require.NoError(t, err)

		_, err = gameSession.ApplyMove("conn-x", 1, 1)
		require.NoError(t, err)

		// When: X disconnects and a new connection requests the slot
		empty := gameSession.Leave("conn-x")
		assert.False(t, empty)

		snap, granted, err := gameSession.Join("conn-x2", entity.RolePlayerX)

		// Then: the replacement gets PlayerX and the unchanged board and turn
		require.NoError(t, err)
		assert.Equal(t, entity.RolePlayerX, granted)
		assert.Equal(t, entity.MarkX, snap.Board[1][1])
		assert.Equal(t, entity.MarkO, snap.ActiveTurn)
		assert.Equal(t, StatusInProgress, snap.Status)
	})

	t.Run("Reports when the last member leaves", func(t *testing.T) {
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-1", entity.RolePlayerX)
		require.NoError(t, err)
		_, _, err = gameSession.Join("conn-2", entity.RoleSpectator)
		require.NoError(t, err)

		assert.False(t, gameSession.Leave("conn-1"))
		assert.True(t, gameSession.Leave("conn-2"))
	})

	t.Run("Leaving an unknown connection is a no-op", func(t *testing.T) {
		gameSession := newTestSession(t)
		_, _, err := gameSession.Join("conn-1", entity.RolePlayerX)
		require.NoError(t, err)

		assert.False(t, gameSession.Leave("stranger"))
		assert.Len(t, gameSession.Snapshot().Members, 1)
	})
}

func TestNew(t *testing.T) {
	t.Run("Rejects malformed dimensions", func(t *testing.T) {
		_, err := New("bad", 0, 3)
		assert.ErrorIs(t, err, apperror.ErrMalformedDimensions)
	})

	t.Run("Starts in progress with X to move", func(t *testing.T) {
		gameSession, err := New("fresh", 5, 7)
		require.NoError(t, err)

		snap := gameSession.Snapshot()
		assert.Equal(t, 5, snap.Rows)
		assert.Equal(t, 7, snap.Cols)
		assert.Equal(t, entity.MarkX, snap.ActiveTurn)
		assert.Equal(t, StatusInProgress, snap.Status)
		assert.Empty(t, snap.Members)
	})
}
