package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridplay/gridgame-backend/internal/apperror"
)

func (that *Server) handleJoinGame(ctx context.Context, conn *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinGame", "connID", conn.id)

	var payloadReq JoinGamePayload
	if err := json.Unmarshal(payload, &payloadReq); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return conn.send(actionGameJoinFailed, FailurePayload{Message: "invalid join-game payload"})
	}

	snap, granted, err := that.manager.JoinGame(ctx, conn.id, payloadReq.GameID, payloadReq.PlayerType, payloadReq.Rows, payloadReq.Cols)
	if err != nil {
		log.Error("failed to join game", "gameID", payloadReq.GameID, "error", err)
		return conn.send(actionGameJoinFailed, FailurePayload{Message: failureMessage(err)})
	}

	payloadResp := GameJoinedPayload{
		ID:           snap.GameID,
		Rows:         snap.Rows,
		Cols:         snap.Cols,
		Board:        snap.Board,
		ActivePlayer: snap.ActiveTurn,
		PlayerType:   string(granted),
	}

	if err = conn.send(actionGameJoined, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player joined game", "gameID", snap.GameID, "role", granted)

	return nil
}

func (that *Server) handlePlay(ctx context.Context, conn *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handlePlay", "connID", conn.id)

	var payloadReq PlayPayload
	if err := json.Unmarshal(payload, &payloadReq); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return conn.send(actionPlayFailed, FailurePayload{Message: "invalid play payload"})
	}

	if payloadReq.GameID == "" {
		return conn.send(actionPlayFailed, FailurePayload{Message: failureMessage(apperror.ErrGameIDRequired)})
	}

	snap, err := that.manager.Play(ctx, conn.id, payloadReq.GameID, payloadReq.Row, payloadReq.Col)
	if err != nil {
		log.Error("failed to make move", "gameID", payloadReq.GameID, "error", err)
		return conn.send(actionPlayFailed, FailurePayload{Message: failureMessage(err)})
	}

	payloadResp := GameUpdatedPayload{
		ActivePlayer: snap.ActiveTurn,
		Board:        snap.Board,
		Status:       snap.Status,
		Winner:       snap.Winner,
	}

	that.broadcast(snap.Members, actionGameUpdated, payloadResp)

	log.Info("player made a move", "gameID", snap.GameID, "status", snap.Status)

	return nil
}

// failureMessage converts an engine error into the human-readable reason
// sent back to the requester. Failures are never broadcast.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrGameIDRequired):
		return "game id is required"
	case errors.Is(err, apperror.ErrMalformedDimensions):
		return "rows and cols must be positive"
	case errors.Is(err, apperror.ErrRoleUnavailable):
		return "player slot is already taken"
	case errors.Is(err, apperror.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, apperror.ErrNotAPlayer):
		return "you are not a player in this game"
	case errors.Is(err, apperror.ErrGameFinished):
		return "game is already finished"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "it's not your turn"
	case errors.Is(err, apperror.ErrOutOfRange):
		return "cell is out of range"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell is already occupied"
	default:
		return "internal error"
	}
}
