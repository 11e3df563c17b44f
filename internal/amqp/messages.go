package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Overlay change operations.
const (
	OpAdd    = "add"
	OpDelete = "delete"
)

// OverlayChangedMessage announces a user edit to a day. It carries only
// identifiers; consumers re-read the overlay from storage.
type OverlayChangedMessage struct {
	Op         string    `json:"op"`
	DateKey    string    `json:"dateKey"`
	ActivityID string    `json:"activityId"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewOverlayChangedMessage(op, dateKey, activityID string) *OverlayChangedMessage {
	return &OverlayChangedMessage{
		Op:         op,
		DateKey:    dateKey,
		ActivityID: activityID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *OverlayChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// OverlayChangedMessageFromJSON decodes and validates a message body.
func OverlayChangedMessageFromJSON(data []byte) (*OverlayChangedMessage, error) {
	var msg OverlayChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode overlay change: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *OverlayChangedMessage) Validate() error {
	if m.Op != OpAdd && m.Op != OpDelete {
		return fmt.Errorf("unknown overlay op %q", m.Op)
	}
	if m.DateKey == "" {
		return fmt.Errorf("overlay change without date")
	}
	return nil
}
