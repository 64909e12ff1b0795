package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type mockMessage struct {
	Type int
	Data []byte
}

// mockConnection blocks ReadMessage until a message is queued or Close is
// called, like a real socket.
type mockConnection struct {
	mu       sync.Mutex
	written  []mockMessage
	writeErr error
	closed   bool

	reads     chan []byte
	closeOnce sync.Once
	closedCh  chan struct{}
	wrote     chan struct{}

	readLimit int64
	pong      func(string) error
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		reads:    make(chan []byte, 16),
		closedCh: make(chan struct{}),
		wrote:    make(chan struct{}, 64),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("connection closed")
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, mockMessage{Type: messageType, Data: data})
	select {
	case m.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case data := <-m.reads:
		return websocket.TextMessage, data, nil
	case <-m.closedCh:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseGoingAway}
	}
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.closeOnce.Do(func() { close(m.closedCh) })
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) RemoteAddr() string               { return "127.0.0.1:8080" }

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	m.readLimit = limit
	m.mu.Unlock()
}

func (m *mockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	m.pong = h
	m.mu.Unlock()
}

func (m *mockConnection) messages() []mockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockMessage, len(m.written))
	copy(out, m.written)
	return out
}

func (m *mockConnection) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
