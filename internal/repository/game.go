package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gridplay/gridgame-backend/internal/session"
)

var ErrGameNotFound = errors.New("archived game not found")

// finished games are kept for a week, enough for post-game review
const archiveTTL = 7 * 24 * time.Hour

type GameArchive interface {
	SaveFinished(ctx context.Context, snap session.Snapshot) error
	GetByID(ctx context.Context, id string) (*ArchivedGame, error)
	DeleteByID(ctx context.Context, id string) error
}

// ArchivedGame is the stored form of a terminal session snapshot.
type ArchivedGame struct {
	ID         string     `json:"id"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Board      [][]string `json:"board"`
	Status     string     `json:"status"`
	Winner     string     `json:"winner,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}

type dbGame struct {
	client *redis.Client
}

func NewGameArchive(client *redis.Client) GameArchive {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) SaveFinished(ctx context.Context, snap session.Snapshot) error {
	archived := ArchivedGame{
		ID:         snap.GameID,
		Rows:       snap.Rows,
		Cols:       snap.Cols,
		Board:      snap.Board,
		Status:     snap.Status,
		Winner:     snap.Winner,
		FinishedAt: time.Now().UTC(),
	}

	gameJSON, err := json.Marshal(archived)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + archived.ID
	if err = that.client.Set(ctx, gameKey, gameJSON, archiveTTL).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*ArchivedGame, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	var archived ArchivedGame
	if err = json.Unmarshal([]byte(response), &archived); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &archived, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	if err := that.client.Del(ctx, gameKey).Err(); err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}
