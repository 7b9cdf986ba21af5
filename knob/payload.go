package knob

import (
	"github.com/tidwall/gjson"
)

// Action is a gesture reported by the knob through the Zigbee bridge.
type Action string

const (
	ActionRotateLeft  Action = "rotate_left"
	ActionRotateRight Action = "rotate_right"
	ActionSingle      Action = "single"
	ActionDouble      Action = "double"
	ActionHold        Action = "hold"
)

func (a Action) Known() bool {
	switch a {
	case ActionRotateLeft, ActionRotateRight, ActionSingle, ActionDouble, ActionHold:
		return true
	}

	return false
}

// Payload is a decoded bridge message. The bridge publishes telemetry with
// and without an action, so every field is optional.
type Payload struct {
	Action Action

	Battery     *int
	Voltage     *int
	LinkQuality *int
}

// ParsePayload decodes the JSON the Zigbee bridge publishes for the knob.
// Fields the bridge did not include are left nil; extra fields are ignored.
func ParsePayload(data []byte) Payload {
	p := Payload{}

	if result := gjson.GetBytes(data, "action"); result.Exists() {
		p.Action = Action(result.String())
	}

	p.Battery = intField(data, "battery")
	p.Voltage = intField(data, "voltage")
	p.LinkQuality = intField(data, "linkquality")

	return p
}

func intField(data []byte, path string) *int {
	if result := gjson.GetBytes(data, path); result.Exists() {
		value := int(result.Int())
		return &value
	}

	return nil
}
