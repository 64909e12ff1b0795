// Package websocket pushes dashboard messages to connected browsers.
//
// A Hub owns the set of clients and fans out every broadcast to them. Each
// Client runs a read pump and a write pump over its gorilla/websocket
// connection. NotificationSurface lets the dashboard notifier draw on every
// connected page through the hub.
package websocket
