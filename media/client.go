package media

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shimmeringbee/logwrap"
	"nhooyr.io/websocket"

	"roonknob/state"
)

type coreError string

func (c coreError) Error() string {
	return string(c)
}

const (
	ErrNotConnected  = coreError("not connected to media core")
	ErrUnknownOutput = coreError("output not known to media core")
	ErrShuttingDown  = coreError("media client is shutting down")
	ErrRequestFailed = coreError("media core rejected request")
)

// TokenStore persists the pairing token issued by the core when the owner
// enables the extension.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// Extension identifies this controller to the core's extension registry.
type Extension struct {
	ID             string
	DisplayName    string
	DisplayVersion string
	InstanceID     string
}

const (
	DefaultDialTimeout    = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	DefaultReconnectDelay = 1 * time.Second
	DefaultPairingDelay   = 5 * time.Second
)

// Client maintains a single websocket connection to the core, re-pairing
// and re-subscribing whenever the connection is re-established.
type Client struct {
	address   string
	extension Extension

	tokens    TokenStore
	publisher state.EventPublisher
	logger    logwrap.Logger

	dialTimeout    time.Duration
	requestTimeout time.Duration
	reconnectDelay time.Duration
	pairingDelay   time.Duration
	retryDelay     time.Duration

	connLock *sync.Mutex
	conn     *websocket.Conn

	nextID      uint64
	pendingLock *sync.Mutex
	pending     map[uint64]chan message

	outputsLock *sync.RWMutex
	outputs     map[string]Output
	outputOrder []string

	connectedLock *sync.Mutex
	connected     bool

	stop chan struct{}
	done chan struct{}
}

func New(address string, extension Extension, tokens TokenStore, publisher state.EventPublisher, logger logwrap.Logger) *Client {
	return &Client{
		address:   address,
		extension: extension,

		tokens:    tokens,
		publisher: publisher,
		logger:    logger,

		dialTimeout:    DefaultDialTimeout,
		requestTimeout: DefaultRequestTimeout,
		reconnectDelay: DefaultReconnectDelay,
		pairingDelay:   DefaultPairingDelay,
		retryDelay:     2 * time.Second,

		connLock:      &sync.Mutex{},
		pendingLock:   &sync.Mutex{},
		pending:       map[uint64]chan message{},
		outputsLock:   &sync.RWMutex{},
		outputs:       map[string]Output{},
		connectedLock: &sync.Mutex{},

		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins supervising the connection to the core, retrying until Stop
// is called.
func (c *Client) Start() {
	go c.supervise()
}

func (c *Client) Stop() {
	close(c.stop)

	if conn := c.currentConn(); conn != nil {
		conn.Close(websocket.StatusNormalClosure, "shutting down")
	}

	<-c.done
}

func (c *Client) Connected() bool {
	c.connectedLock.Lock()
	defer c.connectedLock.Unlock()

	return c.connected
}

func (c *Client) setConnected(connected bool) {
	c.connectedLock.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.connectedLock.Unlock()

	if changed {
		c.publisher.Publish(ConnectionChanged{Connected: connected})
	}
}

func (c *Client) supervise() {
	defer close(c.done)

	ctx := context.Background()

	for {
		if err := c.runOnce(ctx); err != nil {
			c.logger.LogError(ctx, "Media core connection failed.", logwrap.Err(err))
		}

		select {
		case <-c.stop:
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.address, nil)
	cancel()

	if err != nil {
		return fmt.Errorf("failed to dial media core: %w", err)
	}

	c.setConn(conn)
	defer c.setConn(nil)

	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readLoop(conn)
	}()

	if err := c.register(ctx); err != nil {
		conn.Close(websocket.StatusInternalError, "registration failed")
		<-readErr
		return fmt.Errorf("failed to register with media core: %w", err)
	}

	if err := c.subscribeZones(ctx); err != nil {
		conn.Close(websocket.StatusInternalError, "zone subscription failed")
		<-readErr
		return fmt.Errorf("failed to subscribe to zones: %w", err)
	}

	c.logger.LogInfo(ctx, "Connected to media core.", logwrap.Datum("address", c.address))
	c.setConnected(true)

	select {
	case err := <-readErr:
		c.setConnected(false)
		return err
	case <-c.stop:
		<-readErr
		c.setConnected(false)
		return nil
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	c.conn = conn
}

func (c *Client) currentConn() *websocket.Conn {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	return c.conn
}

// register performs extension registration, waiting for the owner to enable
// the extension in the core on first pairing. The core answers pending until
// enabled, then ok with a token which is persisted for later connections.
func (c *Client) register(ctx context.Context) error {
	reportedPending := false

	for {
		resp, err := c.request(ctx, requestRegister, registerRequest{
			ExtensionID:    c.extension.ID,
			DisplayName:    c.extension.DisplayName,
			DisplayVersion: c.extension.DisplayVersion,
			InstanceID:     c.extension.InstanceID,
			Token:          c.tokens.Token(),
		})
		if err != nil {
			return err
		}

		switch resp.Status {
		case statusOK:
			var body registerResponse
			if err := json.Unmarshal(resp.Body, &body); err != nil {
				return fmt.Errorf("failed to parse registration response: %w", err)
			}

			if len(body.Token) > 0 && body.Token != c.tokens.Token() {
				if err := c.tokens.SetToken(body.Token); err != nil {
					c.logger.LogError(ctx, "Failed to persist pairing token, pairing will be requested again on restart.", logwrap.Err(err))
				}
			}

			return nil
		case statusPending:
			if !reportedPending {
				c.logger.LogInfo(ctx, "Extension not yet enabled in media core, enable it under the core's extension settings.")
				reportedPending = true
			}

			select {
			case <-time.After(c.pairingDelay):
			case <-c.stop:
				return ErrShuttingDown
			}
		default:
			return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
		}
	}
}

func (c *Client) subscribeZones(ctx context.Context) error {
	resp, err := c.request(ctx, requestSubscribeZones, struct{}{})
	if err != nil {
		return err
	}

	if err := statusError(resp); err != nil {
		return err
	}

	var body zonesBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return fmt.Errorf("failed to parse zone subscription response: %w", err)
	}

	c.updateOutputs(body.Outputs)
	return nil
}

func (c *Client) request(ctx context.Context, name string, body any) (message, error) {
	conn := c.currentConn()
	if conn == nil {
		return message{}, ErrNotConnected
	}

	bodyData, err := json.Marshal(body)
	if err != nil {
		return message{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	id := atomic.AddUint64(&c.nextID, 1)
	ch := make(chan message, 1)

	c.pendingLock.Lock()
	c.pending[id] = ch
	c.pendingLock.Unlock()

	defer func() {
		c.pendingLock.Lock()
		delete(c.pending, id)
		c.pendingLock.Unlock()
	}()

	data, err := json.Marshal(message{Type: messageRequest, ID: id, Name: name, Body: bodyData})
	if err != nil {
		return message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := conn.Write(reqCtx, websocket.MessageText, data); err != nil {
		return message{}, fmt.Errorf("failed to send request to media core: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-reqCtx.Done():
		return message{}, fmt.Errorf("timed out waiting for media core response to %s: %w", name, reqCtx.Err())
	case <-c.stop:
		return message{}, ErrShuttingDown
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	ctx := context.Background()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.LogDebug(ctx, "Discarding unparsable message from media core.", logwrap.Err(err))
			continue
		}

		switch msg.Type {
		case messageResponse:
			c.pendingLock.Lock()
			if ch, found := c.pending[msg.ID]; found {
				ch <- msg
			}
			c.pendingLock.Unlock()
		case messageEvent:
			c.handleEvent(ctx, msg)
		}
	}
}

func (c *Client) handleEvent(ctx context.Context, msg message) {
	switch msg.Name {
	case eventZonesChanged:
		var body zonesBody
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			c.logger.LogDebug(ctx, "Discarding unparsable zone event from media core.", logwrap.Err(err))
			return
		}

		c.updateOutputs(body.Outputs)
	}
}

func statusError(msg message) error {
	if msg.Status == statusOK {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrRequestFailed, msg.Status)
}
