package media

import (
	"context"
	"time"

	"github.com/shimmeringbee/logwrap"
)

const commandAttempts = 3

// withRetry runs a command against the core up to commandAttempts times,
// pausing between attempts so a reconnect underway can complete.
func (c *Client) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error

	for attempt := 1; attempt <= commandAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			case <-c.stop:
				return ErrShuttingDown
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}

		c.logger.LogWarn(ctx, "Media core command failed.", logwrap.Datum("attempt", attempt), logwrap.Err(err))
	}

	return err
}

func clampVolume(value int, bounds Volume) int {
	min, max := bounds.Min, bounds.Max
	if min == 0 && max == 0 {
		max = 100
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// SetVolume sets the output's volume, clamped to the output's range.
func (c *Client) SetVolume(ctx context.Context, outputID string, value int) error {
	output, found := c.Output(outputID)
	if !found {
		return ErrUnknownOutput
	}

	value = clampVolume(value, output.Volume)

	return c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.request(ctx, requestChangeVolume, changeVolumeRequest{OutputID: outputID, How: volumeAbsolute, Value: value})
		if err != nil {
			return err
		}

		return statusError(resp)
	})
}

// StepVolume adjusts the output's volume by delta from the last value the
// core reported.
func (c *Client) StepVolume(ctx context.Context, outputID string, delta int) error {
	output, found := c.Output(outputID)
	if !found {
		return ErrUnknownOutput
	}

	return c.SetVolume(ctx, outputID, output.Volume.Value+delta)
}

func (c *Client) SetMute(ctx context.Context, outputID string, muted bool) error {
	if _, found := c.Output(outputID); !found {
		return ErrUnknownOutput
	}

	how := muteOff
	if muted {
		how = muteOn
	}

	return c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.request(ctx, requestMute, muteRequest{OutputID: outputID, How: how})
		if err != nil {
			return err
		}

		return statusError(resp)
	})
}

// TogglePlayback toggles play/pause on the zone owning the output. Cores
// which reject the explicit control are asked for their own toggle instead.
func (c *Client) TogglePlayback(ctx context.Context, outputID string) error {
	output, found := c.Output(outputID)
	if !found {
		return ErrUnknownOutput
	}

	control := controlPlay
	if output.State == StatePlaying {
		control = controlPause
	}

	return c.withRetry(ctx, func(ctx context.Context) error {
		resp, err := c.request(ctx, requestControl, controlRequest{ZoneID: output.ZoneID, Control: control})
		if err != nil {
			return err
		}

		if err := statusError(resp); err != nil {
			resp, err = c.request(ctx, requestControl, controlRequest{ZoneID: output.ZoneID, Control: controlPlayPause})
			if err != nil {
				return err
			}

			return statusError(resp)
		}

		return nil
	})
}
