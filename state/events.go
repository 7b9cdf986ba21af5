package state

// SettingsChanged is published whenever the persisted settings record is
// replaced, carrying the new record.
type SettingsChanged struct {
	Settings Settings
}

// KnobStatusUpdate is published whenever telemetry arrives from the knob.
type KnobStatusUpdate struct {
	Status KnobStatus
}

// KnobActionReceived is published for every recognised action the knob
// reports, after it has been forwarded to the media core.
type KnobActionReceived struct {
	Action string
}
