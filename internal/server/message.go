package server

import (
	"encoding/json"
	"time"

	"github.com/coderodent-calfee/texas-holdem/internal/game"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	// Client → Server
	MessageTypeJoin          MessageType = "join"
	MessageTypeAction        MessageType = "action"
	MessageTypeSpecialAction MessageType = "special_action"
	MessageTypeGetState      MessageType = "get_state"
	MessageTypeAddPlayer     MessageType = "add_player"
	MessageTypeRemovePlayer  MessageType = "remove_player"
	MessageTypeResetHand     MessageType = "reset_hand"
	MessageTypeAdvanceDealer MessageType = "advance_dealer"

	// Server → Client
	MessageTypeJoined         MessageType = "joined"
	MessageTypeState          MessageType = "state"
	MessageTypeAllowedActions MessageType = "allowed_actions"
	MessageTypeError          MessageType = "error"
)

// Message is the WebSocket envelope: a type tag plus a raw payload
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type JoinData struct {
	PlayerName string `json:"playerName"`
}

type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type SpecialActionData struct {
	Action string `json:"action"`
}

// Server → Client payloads

type JoinedData struct {
	PlayerID string `json:"playerId"`
}

type StateData struct {
	State game.Snapshot `json:"state"`
}

type AllowedActionsData struct {
	Actions game.AllowedActions `json:"actions"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
