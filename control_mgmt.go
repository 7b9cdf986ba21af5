package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	url2 "net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/nest"

	"roonknob/config"
	"roonknob/interface/mqtt"
	"roonknob/knob"
	"roonknob/media"
	"roonknob/state"
)

const DefaultMQTTEventDuration = 1 * time.Second

func startControlInterface(cfg config.KnobConfig, translator *knob.Translator, tracker *state.KnobTracker, store *state.Store, mediaClient *media.Client, bus *state.EventBus, l logwrap.Logger) (*mqtt.Interface, func() error, error) {
	wl := logwrap.New(nest.Wrap(l))
	wl.AddOptionsToLogger(logwrap.Source("mqtt"))

	clientId, err := randomClientID()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate random client id: %w", err)
	}

	wl.LogInfo(context.Background(), "Constructing new MQTT client.", logwrap.Datum("clientId", clientId), logwrap.Datum("server", cfg.Server))

	clientOptions := pahomqtt.NewClientOptions()
	clientOptions.ClientID = clientId

	if url, err := url2.Parse(cfg.Server); err != nil {
		wl.LogError(context.Background(), "Failed to parse MQTT server URL.", logwrap.Err(err))
		return nil, nil, err
	} else {
		clientOptions.Servers = []*url2.URL{url}
	}

	i := &mqtt.Interface{Handler: translator, Tracker: tracker, Settings: store, Media: mediaClient, EventSubscriber: bus, Logger: wl}

	knobTopics := &knobTopicTracker{topic: store.Settings().KnobTopic}

	lastWillTopic := prefixTopic(cfg.TopicPrefix, mqtt.OnlineTopic)

	clientOptions.OnConnect = func(client pahomqtt.Client) {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultMQTTEventDuration)
		defer cancel()

		wl.LogInfo(context.Background(), "MQTT client successfully connected.", logwrap.Datum("clientId", clientId), logwrap.Datum("server", cfg.Server))

		subscribeKnobTopic(ctx, client, i, knobTopics.current(), wl)

		client.Publish(lastWillTopic, cfg.QOS, cfg.Retained, `true`)

		if err := i.Connected(context.Background(), func(ctx context.Context, topic string, payload []byte) error {
			prefixedTopic := prefixTopic(cfg.TopicPrefix, topic)

			token := client.Publish(prefixedTopic, cfg.QOS, cfg.Retained, payload)
			if err := awaitToken(ctx, token); err != nil {
				wl.LogError(ctx, "Failed to publish message to MQTT.", logwrap.Datum("topic", prefixedTopic), logwrap.Err(err))
				return err
			}

			return nil
		}); err != nil {
			wl.LogError(context.Background(), "Failed to execute connection handler in MQTT interface.", logwrap.Err(err))
		}
	}

	clientOptions.SetConnectionLostHandler(func(client pahomqtt.Client, err error) {
		wl.LogInfo(context.Background(), "MQTT client disconnected.", logwrap.Datum("clientId", clientId), logwrap.Datum("server", cfg.Server), logwrap.Err(err))
		i.Disconnected()
	})

	clientOptions.SetWill(lastWillTopic, `false`, cfg.QOS, cfg.Retained)

	if cfg.Credentials != nil {
		clientOptions.SetUsername(cfg.Credentials.Username)
		clientOptions.SetPassword(cfg.Credentials.Password)
	}

	if cfg.TLS != nil {
		tlsConfig, err := constructMQTTTLSConfig(*cfg.TLS, wl)
		if err != nil {
			return nil, nil, err
		}

		clientOptions.SetTLSConfig(tlsConfig)
	}

	i.Start()

	client := pahomqtt.NewClient(clientOptions)

	resubscribeStop := make(chan bool, 1)
	go resubscribeOnTopicChange(client, i, knobTopics, bus, wl, resubscribeStop)

	go func() {
		ctx := context.Background()

		retry := time.NewTicker(1 * time.Second)
		for {
			select {
			case <-retry.C:
				if token := client.Connect(); token.Wait() && token.Error() != nil {
					wl.LogError(ctx, "Failed initial connection to MQTT server.", logwrap.Datum("clientId", clientId), logwrap.Datum("server", cfg.Server), logwrap.Err(token.Error()))
				} else {
					wl.LogInfo(ctx, "Initial MQTT connection call completed.", logwrap.Datum("clientId", clientId), logwrap.Datum("server", cfg.Server))
					retry.Stop()
					return
				}
			}
		}
	}()

	return i, func() error {
		resubscribeStop <- true
		client.Disconnect(1500)
		i.Stop()
		return nil
	}, nil
}

// knobTopicTracker remembers which bridge topic the MQTT client is subscribed
// to, so a settings change can swap the subscription over.
type knobTopicTracker struct {
	lock  sync.Mutex
	topic string
}

func (k *knobTopicTracker) current() string {
	k.lock.Lock()
	defer k.lock.Unlock()

	return k.topic
}

func (k *knobTopicTracker) swap(topic string) string {
	k.lock.Lock()
	defer k.lock.Unlock()

	previous := k.topic
	k.topic = topic
	return previous
}

func subscribeKnobTopic(ctx context.Context, client pahomqtt.Client, i *mqtt.Interface, topic string, l logwrap.Logger) {
	subscribeToken := client.Subscribe(topic, 0, func(client pahomqtt.Client, message pahomqtt.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultMQTTEventDuration)
		defer cancel()

		if err := i.IncomingKnobMessage(ctx, message.Payload()); err != nil {
			l.LogError(ctx, "Failed to handle incoming knob message.", logwrap.Datum("topic", message.Topic()), logwrap.Err(err))
		}
	})

	if err := awaitToken(ctx, subscribeToken); err != nil {
		l.LogError(ctx, "Failed to subscribe to knob topic in MQTT.", logwrap.Datum("topic", topic), logwrap.Err(err))
	} else {
		l.LogInfo(ctx, "Subscribed to knob topic.", logwrap.Datum("topic", topic))
	}
}

func resubscribeOnTopicChange(client pahomqtt.Client, i *mqtt.Interface, knobTopics *knobTopicTracker, bus *state.EventBus, l logwrap.Logger, stop chan bool) {
	ch := make(chan any, 100)
	bus.Subscribe(ch)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case e := <-ch:
			event, ok := e.(state.SettingsChanged)
			if !ok {
				continue
			}

			newTopic := event.Settings.KnobTopic
			if newTopic == knobTopics.current() {
				continue
			}

			previous := knobTopics.swap(newTopic)

			if !client.IsConnected() {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), DefaultMQTTEventDuration)

			if err := awaitToken(ctx, client.Unsubscribe(previous)); err != nil {
				l.LogError(ctx, "Failed to unsubscribe from previous knob topic.", logwrap.Datum("topic", previous), logwrap.Err(err))
			}

			subscribeKnobTopic(ctx, client, i, newTopic, l)
			cancel()
		case <-stop:
			return
		}
	}
}

func constructMQTTTLSConfig(cfg config.MQTTTLS, l logwrap.Logger) (*tls.Config, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.SkipCertificateVerification}

	if cfg.SkipCertificateVerification {
		l.LogWarn(context.Background(), "Set to ignore remote TLS certificate, this is considered insecure.")
	}

	if len(cfg.Cert) > 0 {
		cert, err := tls.LoadX509KeyPair(cfg.Cert, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate/key for mqtt: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	var certPool *x509.CertPool

	if cfg.IgnoreSystemRootCertificates {
		l.LogInfo(context.Background(), "Configured to ignore system root certificates, ensure you are providing your own.")
		certPool = x509.NewCertPool()
	} else {
		var err error

		certPool, err = x509.SystemCertPool()
		if err != nil {
			// This call fails on Windows with an untyped error, continue with
			// an empty certificate pool there.
			if runtime.GOOS == "windows" {
				l.LogWarn(context.Background(), "Failed to load system certificate pool for root CAs, this is expected on Windows (see Go Issues 16736 and 18609), you must provide the CA root certificate for your servers trust chain.", logwrap.Err(err))
				certPool = x509.NewCertPool()
			} else {
				l.LogError(context.Background(), "Failed to load system certificate pool for root CAs, you may disable loading system certificates by setting $.Knob.TLS.IgnoreSystemRootCertificates and provide your own CA certificate.", logwrap.Err(err))
				return nil, fmt.Errorf("failed to load system certiticate pool: %w", err)
			}
		}
	}

	if len(cfg.CACert) > 0 {
		caCerts, err := os.ReadFile(filepath.Clean(cfg.CACert))
		if err != nil {
			return nil, fmt.Errorf("failed to load CA TLS certificates for mqtt: %w", err)
		}

		certPool.AppendCertsFromPEM(caCerts)
	}

	tlsConfig.RootCAs = certPool

	return tlsConfig, nil
}

func awaitToken(ctx context.Context, token pahomqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return context.DeadlineExceeded
	}
}

func prefixTopic(topicPrefix string, topic string) string {
	if len(topicPrefix) > 0 {
		return fmt.Sprintf("%s/%s", topicPrefix, topic)
	}

	return topic
}

func randomClientID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
