// Package events defines the messages pushed to dashboard pages over WebSocket.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeConnection         MessageType = "connection"
	MessageTypeNotificationShow   MessageType = "notification:show"
	MessageTypeNotificationRemove MessageType = "notification:remove"
	MessageTypeDashboardRefresh   MessageType = "dashboard:refresh"
	MessageTypeEventSaved         MessageType = "event:saved"
	MessageTypeError              MessageType = "error"
)

// Message is the envelope of every WebSocket message.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewMessage stamps a message with the current time.
func NewMessage(t MessageType, data interface{}) Message {
	return Message{Type: t, Data: data, Timestamp: time.Now()}
}

// NotificationData is the payload of notification:show.
type NotificationData struct {
	ID       string `json:"id"`
	Class    string `json:"class"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// NotificationRemoval is the payload of notification:remove.
type NotificationRemoval struct {
	ID string `json:"id"`
}

// RefreshData is the payload of dashboard:refresh.
type RefreshData struct {
	Reason string `json:"reason"`
}

// ConnectionData is sent to a client right after it registers.
type ConnectionData struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}
