package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxRetries is the number of retries an event allows.
const MaxRetries = 3

// EventStatus is the processing state of an integration event.
type EventStatus string

const (
	EventStatusSuccess EventStatus = "SUCCESS"
	EventStatusFailed  EventStatus = "FAILED"
	EventStatusPending EventStatus = "PENDING"
)

// EventStatuses lists every known status in display order.
var EventStatuses = []EventStatus{EventStatusSuccess, EventStatusFailed, EventStatusPending}

// ParseEventStatus normalizes s to a known status.
func ParseEventStatus(s string) (EventStatus, error) {
	status := EventStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case EventStatusSuccess, EventStatusFailed, EventStatusPending:
		return status, nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}

// PayloadFormat is the encoding of an event payload.
type PayloadFormat string

const (
	PayloadFormatXML  PayloadFormat = "XML"
	PayloadFormatJSON PayloadFormat = "JSON"
)

// IntegrationEvent is one message exchanged with SAP by an integration flow.
type IntegrationEvent struct {
	ID              int64         `json:"id"`
	OrderID         string        `json:"orderId" validate:"required,max=64"`
	Status          EventStatus   `json:"status" validate:"required,oneof=SUCCESS FAILED PENDING"`
	Message         string        `json:"message,omitempty"`
	Payload         string        `json:"payload,omitempty"`
	OriginalPayload string        `json:"originalPayload,omitempty"`
	PayloadFormat   PayloadFormat `json:"payloadFormat,omitempty" validate:"omitempty,oneof=XML JSON"`
	RetryCount      int           `json:"retryCount" validate:"min=0"`
	RetryHistory    string        `json:"retryHistory,omitempty"`
	ErrorDetails    string        `json:"errorDetails,omitempty"`
	IntegrationName string        `json:"integrationName,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CanRetry reports whether the event has retries left.
func (e *IntegrationEvent) CanRetry() bool {
	return e.RetryCount < MaxRetries
}

// IncrementRetry counts one retry made at now.
func (e *IntegrationEvent) IncrementRetry(now time.Time) {
	e.RetryCount++
	e.UpdatedAt = now
}

// TimeAgo describes how long before now the event was created, e.g. "5m ago".
func (e *IntegrationEvent) TimeAgo(now time.Time) string {
	if e.CreatedAt.IsZero() {
		return "Unknown"
	}
	seconds := int64(now.Sub(e.CreatedAt) / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}

// RetryEventRequest is an operator's request to resend a failed event.
type RetryEventRequest struct {
	EventID        int64         `json:"eventId"`
	UpdatedPayload string        `json:"updatedPayload"`
	PayloadFormat  PayloadFormat `json:"payloadFormat,omitempty" validate:"omitempty,oneof=XML JSON"`
	UserNotes      string        `json:"userNotes,omitempty" validate:"max=1000"`
}

// RetryEventMessage is published on the retry topic.
type RetryEventMessage struct {
	OrderID              string        `json:"orderId"`
	OriginalStatus       EventStatus   `json:"originalStatus"`
	UpdatedPayload       string        `json:"updatedPayload"`
	OriginalPayload      string        `json:"originalPayload"`
	OriginalErrorDetails string        `json:"originalErrorDetails"`
	RetryAttempt         int           `json:"retryAttempt"`
	RetryTimestamp       time.Time     `json:"retryTimestamp"`
	UserNotes            string        `json:"userNotes,omitempty"`
	PayloadFormat        PayloadFormat `json:"payloadFormat,omitempty"`
}

// DashboardStats summarizes the stored events.
type DashboardStats struct {
	TotalEvents  int64  `json:"totalEvents"`
	SuccessCount int64  `json:"successCount"`
	FailedCount  int64  `json:"failedCount"`
	PendingCount int64  `json:"pendingCount"`
	SuccessRate  string `json:"successRate"`
}

// NewDashboardStats computes the success rate with one decimal.
func NewDashboardStats(total, success, failed, pending int64) DashboardStats {
	rate := 0.0
	if total > 0 {
		rate = float64(success) * 100 / float64(total)
	}
	return DashboardStats{
		TotalEvents:  total,
		SuccessCount: success,
		FailedCount:  failed,
		PendingCount: pending,
		SuccessRate:  fmt.Sprintf("%.1f", rate),
	}
}

// IntegrationSummary is the number of events seen for one integration.
type IntegrationSummary struct {
	IntegrationName string `json:"integrationName"`
	Count           int64  `json:"count"`
}

// EventFilter narrows the dashboard listing. Zero values select everything.
type EventFilter struct {
	OrderID string
	Status  EventStatus
}
