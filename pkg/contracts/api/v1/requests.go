// Package api contains the REST request and response bodies of the dashboard.
package api

import "sapdash/pkg/contracts/domain"

// NotificationRequest asks the dashboard to show a transient notification.
type NotificationRequest struct {
	Message  string `json:"message" validate:"required,max=500"`
	Severity string `json:"severity,omitempty" validate:"omitempty,max=32,alphanum"`
}

// NotificationResponse echoes a shown notification.
type NotificationResponse struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// RefreshState reports or sets the auto refresh toggle.
type RefreshState struct {
	Enabled  bool   `json:"enabled"`
	Interval string `json:"interval,omitempty"`
}

// EventsResponse wraps an event listing.
type EventsResponse struct {
	Events []domain.IntegrationEvent `json:"events"`
	Count  int                       `json:"count"`
}

// RetryRequest is the body of POST /api/events/{id}/retry. The event id
// comes from the path.
type RetryRequest struct {
	UpdatedPayload string               `json:"updatedPayload"`
	PayloadFormat  domain.PayloadFormat `json:"payloadFormat,omitempty" validate:"omitempty,oneof=XML JSON"`
	UserNotes      string               `json:"userNotes,omitempty" validate:"max=1000"`
}

// EventAccepted acknowledges an event handed to the bus.
type EventAccepted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

// DashboardHealth is the body of GET /health. Timestamp is in Unix
// milliseconds.
type DashboardHealth struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
