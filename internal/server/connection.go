package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/coderodent-calfee/texas-holdem/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client. A connection becomes a seated
// viewer once it joins as a named player; until then it only sees the
// spectator projection.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	game      *game.Game
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	playerID  string
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper over an upgraded socket
func NewConnection(conn *websocket.Conn, g *game.Game, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		game:   g,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// channel closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the seat this connection joined as, or ""
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Connection) setPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerID())

	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join data")
			return
		}
		c.handleJoin(data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse action data")
			return
		}
		c.handleAction(data)

	case MessageTypeSpecialAction:
		var data SpecialActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse special action data")
			return
		}
		c.handleSpecialAction(data)

	case MessageTypeGetState:
		c.sendState()

	case MessageTypeAddPlayer:
		c.game.IncreasePlayerCount()

	case MessageTypeRemovePlayer:
		c.game.DecreasePlayerCount()

	case MessageTypeResetHand:
		c.game.ResetHand()

	case MessageTypeAdvanceDealer:
		c.game.AdvanceDealer()

	default:
		c.sendError("unknown_message", "unknown message type: "+string(msg.Type))
	}
}

// handleJoin seats the connection as the named player. The name must match
// one of the configured seats; the seat's id becomes the viewer identity.
func (c *Connection) handleJoin(data JoinData) {
	snap := c.game.Snapshot("")
	for _, p := range snap.Players {
		if p.Name == data.PlayerName {
			c.setPlayer(p.ID)
			c.logger.Info("player joined", "player", p.ID, "name", p.Name)
			if msg, err := NewMessage(MessageTypeJoined, JoinedData{PlayerID: p.ID}); err == nil {
				_ = c.SendMessage(msg)
			}
			c.sendState()
			return
		}
	}
	c.sendError("unknown_player", "no seat named "+data.PlayerName)
}

func (c *Connection) handleAction(data ActionData) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("not_joined", "join before acting")
		return
	}
	action, err := game.ParseAction(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}
	if err := c.game.ApplyPlayerAction(playerID, action, data.Amount); err != nil {
		c.sendError("action_rejected", err.Error())
	}
}

func (c *Connection) handleSpecialAction(data SpecialActionData) {
	playerID := c.PlayerID()
	if playerID == "" {
		c.sendError("not_joined", "join before acting")
		return
	}
	action, err := game.ParseSpecialAction(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}
	if err := c.game.ApplySpecialAction(playerID, action); err != nil {
		c.sendError("action_rejected", err.Error())
	}
}

// sendState sends this viewer's filtered projection, plus their allowed
// actions when it is their turn.
func (c *Connection) sendState() {
	playerID := c.PlayerID()
	snap := c.game.Snapshot(playerID)
	if msg, err := NewMessage(MessageTypeState, StateData{State: snap}); err == nil {
		_ = c.SendMessage(msg)
	}
	if playerID != "" && snap.TurnID == playerID {
		if actions, err := c.game.AllowedActions(playerID); err == nil {
			if msg, err := NewMessage(MessageTypeAllowedActions, AllowedActionsData{Actions: actions}); err == nil {
				_ = c.SendMessage(msg)
			}
		}
	}
}

func (c *Connection) sendError(code, message string) {
	if msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message}); err == nil {
		_ = c.SendMessage(msg)
	}
}
