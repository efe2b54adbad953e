package websocket

import "encoding/json"

// Wire-contract action names; clients depend on these exact strings.
const (
	actionJoinGame = "join-game"
	actionPlay     = "play"

	actionGameJoined     = "game-joined"
	actionGameUpdated    = "game-updated"
	actionGameJoinFailed = "game-join-failed"
	actionPlayFailed     = "play-failed"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinGamePayload struct {
	GameID     string `json:"gameId"`
	PlayerType string `json:"playerType"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
}

type PlayPayload struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// GameJoinedPayload goes only to the joining connection.
type GameJoinedPayload struct {
	ID           string     `json:"id"`
	Rows         int        `json:"rows"`
	Cols         int        `json:"cols"`
	Board        [][]string `json:"board"`
	ActivePlayer string     `json:"active_player"`
	PlayerType   string     `json:"player_type"`
}

// GameUpdatedPayload is broadcast to every member of the session.
type GameUpdatedPayload struct {
	ActivePlayer string     `json:"active_player"`
	Board        [][]string `json:"board"`
	Status       string     `json:"status"`
	Winner       string     `json:"winner,omitempty"`
}

type FailurePayload struct {
	Message string `json:"message"`
}
