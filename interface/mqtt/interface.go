package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shimmeringbee/logwrap"

	"roonknob/knob"
	"roonknob/media"
	"roonknob/state"
)

type Publisher func(ctx context.Context, topic string, payload []byte) error

func EmptyPublisher(ctx context.Context, topic string, payload []byte) error {
	return nil
}

const (
	StatusTopic = "status"
	OnlineTopic = "online"
)

type ActionHandler interface {
	HandleAction(ctx context.Context, action knob.Action) error
}

type SettingsProvider interface {
	Settings() state.Settings
}

type CoreStatus interface {
	Connected() bool
}

// Interface is the knob leg of the controller: it consumes bridge messages
// for the knob and publishes a retained controller status document.
type Interface struct {
	Handler         ActionHandler
	Tracker         *state.KnobTracker
	Settings        SettingsProvider
	Media           CoreStatus
	EventSubscriber state.EventSubscriber
	Logger          logwrap.Logger

	publisherLock sync.Mutex
	publisher     Publisher
	online        bool

	stop chan bool
}

// IncomingKnobMessage handles one bridge message for the knob: telemetry is
// always recorded, and a recognised action is forwarded to the media core.
func (i *Interface) IncomingKnobMessage(ctx context.Context, payload []byte) error {
	p := knob.ParsePayload(payload)

	i.Tracker.Seen(p.Battery, p.Voltage, p.LinkQuality)

	if len(p.Action) == 0 {
		return nil
	}

	if !p.Action.Known() {
		i.Logger.LogDebug(ctx, "Ignoring unrecognised knob action.", logwrap.Datum("action", string(p.Action)))
		return nil
	}

	if err := i.Handler.HandleAction(ctx, p.Action); err != nil {
		return fmt.Errorf("failed to handle knob action: %w", err)
	}

	return nil
}

func (i *Interface) Connected(ctx context.Context, publisher Publisher) error {
	i.publisherLock.Lock()
	i.publisher = publisher
	i.online = true
	i.publisherLock.Unlock()

	i.Logger.LogInfo(ctx, "MQTT connected, publishing controller status.")
	i.publishStatus(ctx)

	return nil
}

func (i *Interface) Disconnected() {
	i.publisherLock.Lock()
	defer i.publisherLock.Unlock()

	i.publisher = EmptyPublisher
	i.online = false
}

// Online reports whether the broker connection is currently up.
func (i *Interface) Online() bool {
	i.publisherLock.Lock()
	defer i.publisherLock.Unlock()

	return i.online
}

func (i *Interface) currentPublisher() Publisher {
	i.publisherLock.Lock()
	defer i.publisherLock.Unlock()

	if i.publisher == nil {
		return EmptyPublisher
	}

	return i.publisher
}

func (i *Interface) Start() {
	i.stop = make(chan bool, 1)

	ch := make(chan any, 100)
	i.EventSubscriber.Subscribe(ch)

	go i.handleEvents(ch)
}

func (i *Interface) Stop() {
	if i.stop != nil {
		i.stop <- true
	}
}

func (i *Interface) handleEvents(ch chan any) {
	for {
		select {
		case event := <-ch:
			i.statusUpdateOnEvent(event)
		case <-i.stop:
			return
		}
	}
}

const MaximumStatusUpdateTime = 1 * time.Second

func (i *Interface) statusUpdateOnEvent(e any) {
	ctx, cancel := context.WithTimeout(context.Background(), MaximumStatusUpdateTime)
	defer cancel()

	switch e.(type) {
	case state.KnobStatusUpdate:
		i.publishStatus(ctx)
	case state.SettingsChanged:
		i.publishStatus(ctx)
	case media.ConnectionChanged:
		i.publishStatus(ctx)
	}
}

type controllerStatus struct {
	Online        bool       `json:"online"`
	CoreConnected bool       `json:"core_connected"`
	Zone          string     `json:"zone,omitempty"`
	Battery       *int       `json:"battery,omitempty"`
	Voltage       *int       `json:"voltage,omitempty"`
	LinkQuality   *int       `json:"linkquality,omitempty"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
}

func (i *Interface) publishStatus(ctx context.Context) {
	settings := i.Settings.Settings()
	knobStatus := i.Tracker.Status()

	status := controllerStatus{
		Online:        true,
		CoreConnected: i.Media.Connected(),
		Zone:          settings.OutputName,
		Battery:       knobStatus.Battery,
		Voltage:       knobStatus.Voltage,
		LinkQuality:   knobStatus.LinkQuality,
		LastSeen:      knobStatus.LastSeen,
	}

	payload, err := json.Marshal(status)
	if err != nil {
		i.Logger.LogError(ctx, "Failed to marshal controller status.", logwrap.Err(err))
		return
	}

	if err := i.currentPublisher()(ctx, StatusTopic, payload); err != nil {
		i.Logger.LogError(ctx, "Failed to publish controller status.", logwrap.Err(err))
	}
}
