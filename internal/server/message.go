package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a websocket message
type MessageType string

const (
	// Server → Client
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"

	// Client → Server
	MessageTypeToggleAutoPlay MessageType = "toggle_autoplay"
	MessageTypeSetAutoPlay    MessageType = "set_autoplay"
	MessageTypeReset          MessageType = "reset"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
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

// SetAutoPlayData is the payload of a set_autoplay command
type SetAutoPlayData struct {
	On bool `json:"on"`
}

// AutoPlayData reports the auto-play setting after a command
type AutoPlayData struct {
	AutoPlay bool `json:"autoPlay"`
}

// ErrorData describes a rejected command
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
