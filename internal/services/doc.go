// Package services implements the business logic of the dashboard. It sits
// between the HTTP handlers and the store, bus and WebSocket hub.
//
// # Services
//
//	- EventService: listing, search, status filter, statistics, reprocess
//	  and operator retries of integration events
//	- SampleDataGenerator: seeds demo events into an empty store
//	- HealthService: health, readiness, liveness and version reports
//
// Services take their collaborators and a *slog.Logger through their
// constructors. Failures are reported with the sentinel errors in errors.go,
// wrapped with context, so handlers can map them with errors.Is:
//
//	event, err := svc.Retry(ctx, req)
//	if errors.Is(err, services.ErrRetryLimitReached) {
//	    // 409
//	}
package services
