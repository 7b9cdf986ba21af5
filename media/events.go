package media

// ConnectionChanged is published when the websocket to the core comes up
// (registered and subscribed) or drops.
type ConnectionChanged struct {
	Connected bool
}

// OutputsUpdated is published whenever the core reports a new output list,
// both on subscription and on later change events.
type OutputsUpdated struct {
	Outputs []Output
}
