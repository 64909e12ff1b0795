// Package app wires the SAP integration dashboard together and runs it.
//
// New builds every component from a *config.Config: the event store
// (SQLite or memory), the message bus (Kafka or memory), the event service
// and its consumer, the WebSocket hub with its notification surface, the
// auto-refresh controller, the table exporter and the chi router. Nothing
// runs until Start or Run.
//
// # Lifecycle
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// Run checks readiness, seeds sample events into an empty store, starts the
// hub and then serves HTTP and consumes the events topic until ctx is done
// or SIGINT/SIGTERM arrives. Stop drains the server, stops the hub and
// closes the bus and the store. It is safe to call more than once.
//
// Errors are returned to the caller; the package never calls os.Exit.
package app
