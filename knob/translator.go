package knob

import (
	"context"
	"fmt"

	"github.com/shimmeringbee/logwrap"

	"roonknob/state"
)

type translationError string

func (t translationError) Error() string {
	return string(t)
}

const (
	ErrNoZoneConfigured = translationError("no zone configured for knob")
	ErrUnknownAction    = translationError("unknown knob action")
)

// ZoneControl is the subset of the media client the translator drives.
type ZoneControl interface {
	StepVolume(ctx context.Context, outputID string, delta int) error
	SetVolume(ctx context.Context, outputID string, value int) error
	TogglePlayback(ctx context.Context, outputID string) error
}

type SettingsProvider interface {
	Settings() state.Settings
}

const (
	DoublePressVolume = 50
	HoldVolume        = 0
)

// Translator maps knob gestures onto zone commands: rotation steps the
// volume, a single press toggles playback, a double press jumps to half
// volume and a hold silences the output.
type Translator struct {
	Control   ZoneControl
	Settings  SettingsProvider
	Publisher state.EventPublisher
	Logger    logwrap.Logger
}

func (t *Translator) HandleAction(ctx context.Context, action Action) error {
	settings := t.Settings.Settings()

	if len(settings.OutputID) == 0 {
		return ErrNoZoneConfigured
	}

	t.Logger.LogDebug(ctx, "Handling knob action.", logwrap.Datum("action", string(action)), logwrap.Datum("output", settings.OutputID))

	var err error

	switch action {
	case ActionRotateRight:
		err = t.Control.StepVolume(ctx, settings.OutputID, settings.VolumeStep)
	case ActionRotateLeft:
		err = t.Control.StepVolume(ctx, settings.OutputID, -settings.VolumeStep)
	case ActionSingle:
		err = t.Control.TogglePlayback(ctx, settings.OutputID)
	case ActionDouble:
		err = t.Control.SetVolume(ctx, settings.OutputID, DoublePressVolume)
	case ActionHold:
		err = t.Control.SetVolume(ctx, settings.OutputID, HoldVolume)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil {
		return fmt.Errorf("failed to forward knob action '%s': %w", action, err)
	}

	t.Publisher.Publish(state.KnobActionReceived{Action: string(action)})

	return nil
}
