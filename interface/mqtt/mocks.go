package mqtt

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roonknob/knob"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

type MockActionHandler struct {
	mock.Mock
}

func (m *MockActionHandler) HandleAction(ctx context.Context, action knob.Action) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}
