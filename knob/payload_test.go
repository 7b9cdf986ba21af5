package knob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	t.Run("a full bridge message decodes action and telemetry", func(t *testing.T) {
		p := ParsePayload([]byte(`{"action":"rotate_right","action_step_size":13,"battery":87,"voltage":2900,"linkquality":156}`))

		assert.Equal(t, ActionRotateRight, p.Action)
		assert.True(t, p.Action.Known())

		if assert.NotNil(t, p.Battery) {
			assert.Equal(t, 87, *p.Battery)
		}
		if assert.NotNil(t, p.Voltage) {
			assert.Equal(t, 2900, *p.Voltage)
		}
		if assert.NotNil(t, p.LinkQuality) {
			assert.Equal(t, 156, *p.LinkQuality)
		}
	})

	t.Run("a telemetry-only message has no action", func(t *testing.T) {
		p := ParsePayload([]byte(`{"battery":87,"linkquality":120}`))

		assert.Empty(t, p.Action)
		assert.Nil(t, p.Voltage)
		assert.NotNil(t, p.Battery)
	})

	t.Run("unrecognised actions are carried but not known", func(t *testing.T) {
		p := ParsePayload([]byte(`{"action":"rotate_left_quick"}`))

		assert.Equal(t, Action("rotate_left_quick"), p.Action)
		assert.False(t, p.Action.Known())
	})

	t.Run("unparsable payloads decode to an empty payload", func(t *testing.T) {
		p := ParsePayload([]byte(`not json`))

		assert.Empty(t, p.Action)
		assert.Nil(t, p.Battery)
	})
}
