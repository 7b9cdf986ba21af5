package v1

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roonknob/media"
	"roonknob/state"
)

type MockZoneProvider struct {
	mock.Mock
}

func (m *MockZoneProvider) Outputs() []media.Output {
	args := m.Called()
	return args.Get(0).([]media.Output)
}

func (m *MockZoneProvider) Output(id string) (media.Output, bool) {
	args := m.Called(id)
	return args.Get(0).(media.Output), args.Bool(1)
}

func (m *MockZoneProvider) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockZoneProvider) SetVolume(ctx context.Context, outputID string, value int) error {
	args := m.Called(ctx, outputID, value)
	return args.Error(0)
}

func (m *MockZoneProvider) TogglePlayback(ctx context.Context, outputID string) error {
	args := m.Called(ctx, outputID)
	return args.Error(0)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Settings() state.Settings {
	args := m.Called()
	return args.Get(0).(state.Settings)
}

func (m *MockSettingsStore) SetSettings(settings state.Settings) error {
	args := m.Called(settings)
	return args.Error(0)
}
