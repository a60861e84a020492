package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
)

// ErrMalformedMessage marks a delivery that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// InsightRequestMessage asks the worker to compute insights for one user over
// the trailing Days days. Zero Days means the worker default.
type InsightRequestMessage struct {
	RequestID   string    `json:"requestId"`
	UserID      string    `json:"userId"`
	Days        int       `json:"days,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

func NewInsightRequestMessage(userID string, days int) *InsightRequestMessage {
	return &InsightRequestMessage{
		RequestID:   uuid.NewString(),
		UserID:      userID,
		Days:        days,
		RequestedAt: time.Now(),
	}
}

func (m *InsightRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InsightRequestFromJSON decodes and checks a request. Every failure wraps
// ErrMalformedMessage.
func InsightRequestFromJSON(data []byte) (*InsightRequestMessage, error) {
	var msg InsightRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	if msg.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrMalformedMessage)
	}
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	return &msg, nil
}

// InsightDigestMessage carries computed insights to the notification side.
type InsightDigestMessage struct {
	RequestID   string         `json:"requestId"`
	UserID      string         `json:"userId"`
	Period      string         `json:"period"`
	TotalSpent  float64        `json:"totalSpent"`
	Insights    []core.Insight `json:"insights"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

func (m *InsightDigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InsightDigestFromJSON(data []byte) (*InsightDigestMessage, error) {
	var msg InsightDigestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
