package services

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"sapdash/pkg/contracts/events"
)

// MockBroadcaster is a mock for the Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastMessage(msgType events.MessageType, data interface{}) {
	m.Called(msgType, data)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, string, []byte) error {
	return errors.New("broker unreachable")
}
