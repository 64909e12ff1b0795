// Package http implements the HTTP handlers of the integration dashboard.
// Handlers are a thin layer over the event service and the dashboard
// helpers: they parse the request, call the service and render the result.
//
// # Handlers
//
//	DashboardHandler     GET /, POST /search, POST /filter, POST /reprocess/{id}, GET /summary/chart
//	ExportHandler        GET /export.csv, GET /api/events/export
//	EventHandler         /api/events, /api/stats, /api/summary
//	NotificationHandler  /api/notifications
//	RefreshHandler       GET and PUT /api/refresh
//	HealthHandler        /health, /api/health, /api/version
//	WebSocketHandler     /ws
//
// # Errors
//
// Every failure goes through errors.ErrorHandler and is written as an
// RFC 7807 problem:
//
//	{
//	    "type": "/errors/event/not-found",
//	    "title": "Event Not Found",
//	    "status": 404,
//	    "detail": "event not found",
//	    "instance": "/api/events/42"
//	}
//
// # Exports
//
// Exports reuse the rendered dashboard. The exporter parses the events
// table out of the page for the requested listing, and ResponseSaver
// writes the encoded file back as an attachment. Both find the request
// through the context the handler passes to the exporter.
package http
