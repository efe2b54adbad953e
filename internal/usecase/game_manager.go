package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridplay/gridgame-backend/internal/apperror"
	"github.com/gridplay/gridgame-backend/internal/entity"
	"github.com/gridplay/gridgame-backend/internal/session"
)

type gameArchive interface {
	SaveFinished(ctx context.Context, snap session.Snapshot) error
}

// GameManager translates connection-level requests into registry and
// session calls. It tracks which game each connection belongs to, so a
// connection is a member of at most one session at a time.
type GameManager struct {
	logger   *slog.Logger
	registry *session.Registry
	archive  gameArchive

	mu          sync.Mutex
	memberships map[string]string // connID -> gameID
}

func NewGameManager(logger *slog.Logger, registry *session.Registry, archive gameArchive) *GameManager {
	return &GameManager{
		logger:      logger,
		registry:    registry,
		archive:     archive,
		memberships: make(map[string]string),
	}
}

// JoinGame attaches the connection to the game, creating the session on
// first join with the supplied dimensions. Joining a new game implicitly
// leaves the previous one.
func (that *GameManager) JoinGame(ctx context.Context, connID, gameID, playerType string, rows, cols int) (session.Snapshot, entity.Role, error) {
	log := that.logger.With("method", "JoinGame")

	if gameID == "" {
		return session.Snapshot{}, "", apperror.ErrGameIDRequired
	}

	// a connection belongs to at most one session at a time
	that.mu.Lock()
	previousID, wasMember := that.memberships[connID]
	that.mu.Unlock()

	if wasMember && previousID != gameID {
		that.leaveGame(connID, previousID)
	}

	gameSession, created, err := that.registry.FindOrCreate(gameID, rows, cols)
	if err != nil {
		return session.Snapshot{}, "", fmt.Errorf("failed to find or create game: %w", err)
	}

	snap, granted, err := gameSession.Join(connID, entity.ParseRole(playerType))
	if err != nil {
		if created && len(gameSession.Snapshot().Members) == 0 {
			that.registry.Remove(gameID)
		}

		return session.Snapshot{}, "", fmt.Errorf("failed to join game %s: %w", gameID, err)
	}

	that.mu.Lock()
	that.memberships[connID] = gameID
	that.mu.Unlock()

	log.Info("connection joined game", "connID", connID, "gameID", gameID, "role", granted, "created", created)

	return snap, granted, nil
}

// Play applies a move on the game and archives the final snapshot when
// the move ends it.
func (that *GameManager) Play(ctx context.Context, connID, gameID string, row, col int) (session.Snapshot, error) {
	log := that.logger.With("method", "Play")

	gameSession, err := that.registry.Get(gameID)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to resolve game: %w", err)
	}

	snap, err := gameSession.ApplyMove(connID, row, col)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to make move in game %s: %w", gameID, err)
	}

	if snap.IsFinished() {
		that.archiveFinished(ctx, snap)
	}

	log.Debug("move accepted", "connID", connID, "gameID", gameID, "row", row, "col", col, "status", snap.Status)

	return snap, nil
}

// Disconnect releases the connection's role and removes the session once
// its membership is empty.
func (that *GameManager) Disconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "Disconnect")

	that.mu.Lock()
	gameID, ok := that.memberships[connID]
	that.mu.Unlock()

	if !ok {
		return
	}

	that.leaveGame(connID, gameID)

	log.Info("connection left game", "connID", connID, "gameID", gameID)
}

// GameCount reports how many sessions are live.
func (that *GameManager) GameCount() int {
	return that.registry.Len()
}

// leaveGame drops the membership and removes the session once its last
// member is gone; the registry lock never spans the session call.
func (that *GameManager) leaveGame(connID, gameID string) {
	that.mu.Lock()
	delete(that.memberships, connID)
	that.mu.Unlock()

	gameSession, err := that.registry.Get(gameID)
	if err != nil {
		return
	}

	if empty := gameSession.Leave(connID); empty {
		that.registry.Remove(gameID)
	}
}

// archiveFinished is best-effort; a storage failure never reaches players.
func (that *GameManager) archiveFinished(ctx context.Context, snap session.Snapshot) {
	if that.archive == nil {
		return
	}

	if err := that.archive.SaveFinished(ctx, snap); err != nil {
		that.logger.Error("failed to archive finished game", "gameID", snap.GameID, "error", err)
	}
}
