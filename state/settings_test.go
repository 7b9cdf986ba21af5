package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T, publisher EventPublisher) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"), publisher)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { s.Close() })

	return s
}

func TestStore_Settings(t *testing.T) {
	t.Run("a new store returns default settings", func(t *testing.T) {
		s := newTestStore(t, NullEventPublisher)

		settings := s.Settings()
		assert.Equal(t, DefaultVolumeStep, settings.VolumeStep)
		assert.Equal(t, DefaultKnobTopic, settings.KnobTopic)
		assert.Empty(t, settings.OutputID)
	})

	t.Run("saved settings are returned and survive a reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		s, err := NewStore(path, NullEventPublisher)
		assert.NoError(t, err)

		expected := DefaultSettings()
		expected.OutputID = "output-1"
		expected.OutputName = "Library"
		expected.VolumeStep = 2

		assert.NoError(t, s.SetSettings(expected))
		assert.Equal(t, expected, s.Settings())
		assert.NoError(t, s.Close())

		reopened, err := NewStore(path, NullEventPublisher)
		assert.NoError(t, err)
		defer reopened.Close()

		assert.Equal(t, expected, reopened.Settings())
	})

	t.Run("saving publishes a SettingsChanged event", func(t *testing.T) {
		eb := NewEventBus()
		ch := make(chan any, 1)
		eb.Subscribe(ch)

		s := newTestStore(t, eb)

		settings := DefaultSettings()
		settings.OutputID = "output-1"
		assert.NoError(t, s.SetSettings(settings))

		select {
		case e := <-ch:
			assert.Equal(t, SettingsChanged{Settings: settings}, e)
		default:
			assert.Fail(t, "no event received")
		}
	})

	t.Run("invalid settings are rejected without being persisted", func(t *testing.T) {
		s := newTestStore(t, NullEventPublisher)

		settings := DefaultSettings()
		settings.VolumeStep = 0
		assert.ErrorIs(t, s.SetSettings(settings), ErrInvalidVolumeStep)

		settings = DefaultSettings()
		badVolume := 101
		settings.InitialVolume = &badVolume
		assert.ErrorIs(t, s.SetSettings(settings), ErrInvalidInitialVolume)

		settings = DefaultSettings()
		settings.KnobTopic = ""
		assert.ErrorIs(t, s.SetSettings(settings), ErrEmptyKnobTopic)

		assert.Equal(t, DefaultSettings(), s.Settings())
	})
}

func TestStore_Token(t *testing.T) {
	t.Run("token is empty until set, then persisted", func(t *testing.T) {
		s := newTestStore(t, NullEventPublisher)

		assert.Empty(t, s.Token())
		assert.NoError(t, s.SetToken("pairing-token"))
		assert.Equal(t, "pairing-token", s.Token())
	})
}
