package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridplay/gridgame-backend/internal/entity"
	"github.com/gridplay/gridgame-backend/internal/session"
	"github.com/gridplay/gridgame-backend/testing/suite"
)

func finishedSnapshot() session.Snapshot {
	return session.Snapshot{
		GameID:     "game-123",
		Rows:       3,
		Cols:       3,
		Board:      [][]string{{"X", "X", "X"}, {"O", "O", ""}, {"", "", ""}},
		ActiveTurn: entity.MarkX,
		Status:     session.StatusWonByX,
		Winner:     entity.MarkX,
	}
}

func TestGameArchive_SaveFinished(t *testing.T) {
	ctx, st := suite.New(t)

	archive := NewGameArchive(st.Storage)

	// Given: a terminal snapshot
	snap := finishedSnapshot()

	// When: SaveFinished is called
	err := archive.SaveFinished(ctx, snap)

	// Then: no error should be returned, and the game is stored
	require.NoError(t, err)
}

func TestGameArchive_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		archive := NewGameArchive(st.Storage)

		snap := finishedSnapshot()
		err := archive.SaveFinished(ctx, snap)
		require.NoError(t, err)

		// When: GetByID is called with an existing ID
		archived, err := archive.GetByID(ctx, snap.GameID)

		// Then: the stored game should match the snapshot
		require.NoError(t, err)
		assert.Equal(t, snap.GameID, archived.ID)
		assert.Equal(t, snap.Rows, archived.Rows)
		assert.Equal(t, snap.Cols, archived.Cols)
		assert.Equal(t, snap.Board, archived.Board)
		assert.Equal(t, session.StatusWonByX, archived.Status)
		assert.Equal(t, entity.MarkX, archived.Winner)
		assert.False(t, archived.FinishedAt.IsZero())
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		archive := NewGameArchive(st.Storage)

		// When: GetByID is called with a non-existent ID
		archived, err := archive.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
		assert.Nil(t, archived)
	})
}

func TestGameArchive_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	archive := NewGameArchive(st.Storage)

	snap := finishedSnapshot()
	err := archive.SaveFinished(ctx, snap)
	require.NoError(t, err)

	// When: DeleteByID is called
	err = archive.DeleteByID(ctx, snap.GameID)

	// Then: the game should no longer be retrievable
	require.NoError(t, err)

	_, err = archive.GetByID(ctx, snap.GameID)
	assert.ErrorIs(t, err, ErrGameNotFound)
}
