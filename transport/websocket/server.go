package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridplay/gridgame-backend/internal/entity"
	"github.com/gridplay/gridgame-backend/internal/pkg"
	"github.com/gridplay/gridgame-backend/internal/session"
)

type gameManager interface {
	JoinGame(ctx context.Context, connID, gameID, playerType string, rows, cols int) (session.Snapshot, entity.Role, error)
	Play(ctx context.Context, connID, gameID string, row, col int) (session.Snapshot, error)
	Disconnect(ctx context.Context, connID string)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]func(ctx context.Context, conn *connection, payload json.RawMessage) error
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		connections: make(map[string]*connection),
		handlers:    make(map[string]func(context.Context, *connection, json.RawMessage) error),
	}

	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionPlay] = server.handlePlay

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the connection and runs its read loop until
// the peer goes away. Closing releases the connection's role.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{
		id: pkg.GenerateConnectionID(),
		ws: wsConn,
	}

	that.connectionsMutex.Lock()
	that.connections[conn.id] = conn
	that.connectionsMutex.Unlock()

	log = log.With("connID", conn.id)
	log.Info("WebSocket connection established")

	defer func() {
		that.connectionsMutex.Lock()
		delete(that.connections, conn.id)
		that.connectionsMutex.Unlock()

		that.manager.Disconnect(ctx, conn.id)

		if closeErr := wsConn.Close(); closeErr != nil {
			log.Debug("failed to close connection", "error", closeErr)
		}

		log.Info("WebSocket connection closed")
	}()

	that.handleMessages(ctx, conn)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleMessages", "connID", conn.id)

	for {
		_, reqBody, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, conn, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// broadcast sends the message to every listed member that is still
// connected; members without a live connection are skipped.
func (that *Server) broadcast(members []string, action string, payload any) {
	log := that.logger.With("method", "broadcast")

	for _, connID := range members {
		that.connectionsMutex.RLock()
		conn, ok := that.connections[connID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for member", "connID", connID)
			continue
		}

		if err := conn.send(action, payload); err != nil {
			log.Error("failed to send game update", "connID", connID, "error", err)
		}
	}
}

// connection is one websocket client; writes are serialized by the mutex
// because broadcasts arrive from other connections' read loops.
type connection struct {
	id string
	ws *websocket.Conn

	writeMutex sync.Mutex
}

func (that *connection) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{
		Action:  action,
		Payload: payloadJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.ws.WriteMessage(websocket.TextMessage, responseBytes); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
