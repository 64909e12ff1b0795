package testutil

import (
	"fmt"
	"time"

	"sapdash/pkg/contracts/domain"
)

// FixtureTime is the creation time of the newest fixture event.
var FixtureTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// FailedEvent returns an unsaved failed event.
func FailedEvent(orderID string) domain.IntegrationEvent {
	return domain.IntegrationEvent{
		OrderID:         orderID,
		Status:          domain.EventStatusFailed,
		Message:         "Order placed successfully",
		Payload:         `<order id="` + orderID + `"/>`,
		PayloadFormat:   domain.PayloadFormatXML,
		ErrorDetails:    "Connection timeout to SAP",
		IntegrationName: "Order-to-SAP",
		CreatedAt:       FixtureTime,
	}
}

// MixedEvents returns n unsaved events cycling through every status, one
// minute apart, oldest first.
func MixedEvents(n int) []domain.IntegrationEvent {
	events := make([]domain.IntegrationEvent, 0, n)
	integrations := []string{"Order-to-SAP", "Customer-Sync", "Inventory-Update", "Invoice-Processing"}
	for i := 0; i < n; i++ {
		status := domain.EventStatuses[i%len(domain.EventStatuses)]
		e := domain.IntegrationEvent{
			OrderID:         fmt.Sprintf("PO-%05d", i+1),
			Status:          status,
			Message:         "Data synchronized",
			IntegrationName: integrations[i%len(integrations)],
			CreatedAt:       FixtureTime.Add(-time.Duration(n-1-i) * time.Minute),
		}
		if status == domain.EventStatusFailed {
			e.ErrorDetails = "Network error"
		}
		events = append(events, e)
	}
	return events
}
