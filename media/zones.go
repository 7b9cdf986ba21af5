package media

import (
	"strings"
)

// Output is a controllable endpoint in the core, the unit the knob is bound
// to. Several outputs may share a zone; playback state belongs to the zone,
// volume to the output.
type Output struct {
	ID          string `json:"output_id"`
	ZoneID      string `json:"zone_id"`
	DisplayName string `json:"display_name"`
	State       string `json:"state"`
	Volume      Volume `json:"volume"`
}

type Volume struct {
	Value int  `json:"value"`
	Min   int  `json:"min"`
	Max   int  `json:"max"`
	Muted bool `json:"muted"`
}

const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// Outputs returns the known outputs in the order the core last reported
// them.
func (c *Client) Outputs() []Output {
	c.outputsLock.RLock()
	defer c.outputsLock.RUnlock()

	outputs := make([]Output, 0, len(c.outputOrder))
	for _, id := range c.outputOrder {
		outputs = append(outputs, c.outputs[id])
	}

	return outputs
}

func (c *Client) Output(id string) (Output, bool) {
	c.outputsLock.RLock()
	defer c.outputsLock.RUnlock()

	output, found := c.outputs[id]
	return output, found
}

// ResolveOutput locates an output by identifier, falling back to display
// name when the identifier no longer exists. Cores regenerate output
// identifiers when audio hardware is re-plugged, so the name fallback keeps
// a saved selection working across that.
func (c *Client) ResolveOutput(id string, name string) (Output, bool) {
	if output, found := c.Output(id); found {
		return output, true
	}

	if len(name) == 0 {
		return Output{}, false
	}

	c.outputsLock.RLock()
	defer c.outputsLock.RUnlock()

	for _, oid := range c.outputOrder {
		if c.outputs[oid].DisplayName == name {
			return c.outputs[oid], true
		}
	}

	for _, oid := range c.outputOrder {
		if strings.Contains(c.outputs[oid].DisplayName, name) {
			return c.outputs[oid], true
		}
	}

	return Output{}, false
}

func (c *Client) updateOutputs(outputs []Output) {
	c.outputsLock.Lock()

	c.outputs = make(map[string]Output, len(outputs))
	c.outputOrder = make([]string, 0, len(outputs))

	for _, output := range outputs {
		c.outputs[output.ID] = output
		c.outputOrder = append(c.outputOrder, output.ID)
	}

	c.outputsLock.Unlock()

	c.publisher.Publish(OutputsUpdated{Outputs: outputs})
}
