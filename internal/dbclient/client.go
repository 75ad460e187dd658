package dbclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/wsauth/internal/endpoint"
	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/metrics"
)

type State int32

const (
	Disconnected State = iota
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// EndpointSource mints the URL used for the next (re)connect.
type EndpointSource interface {
	Endpoint() (string, error)
}

// Config controls the connection schedule.
type Config struct {
	ReconnectInterval time.Duration
	HeartbeatInterval time.Duration
	// RequestTimeout bounds gate wait plus reply wait of one Do; 0 means none.
	RequestTimeout time.Duration
	// Serial holds the gate for the full round trip instead of only the send.
	Serial bool
}

func DefaultConfig() Config {
	return Config{
		ReconnectInterval: 360 * time.Second,
		HeartbeatInterval: 30 * time.Second,
	}
}

// Client owns the single connection to the database actor. It is safe for
// concurrent use; all writes go through one FIFO gate.
type Client struct {
	cfg       Config
	endpoints EndpointSource
	dialer    Dialer
	logger    logging.Logger
	metrics   *metrics.Metrics
	gate      *Gate

	urlMu sync.RWMutex
	url   string

	// sess is replaced only while the gate is held.
	sess *session

	// stateMu orders epoch and state transitions together so a stale reader
	// cannot mark a newer epoch Disconnected.
	stateMu sync.Mutex
	epoch   atomic.Uint64
	state   atomic.Int32

	listenerMu sync.Mutex
	listeners  []func(State)
}

func New(endpoints EndpointSource, dialer Dialer, cfg Config, logger logging.Logger, m *metrics.Metrics) *Client {
	def := DefaultConfig()
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = def.ReconnectInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	c := &Client{
		cfg:       cfg,
		endpoints: endpoints,
		dialer:    dialer,
		logger:    logger.With("module", "dbclient"),
		metrics:   m,
		gate:      NewGate(),
	}
	m.SetConnectionState(int(Disconnected))
	return c
}

// OnStateChange registers fn to be called after every state transition.
func (c *Client) OnStateChange(fn func(State)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) State() State {
	return State(c.state.Load())
}

// URL returns the endpoint of the current connection epoch.
func (c *Client) URL() string {
	c.urlMu.RLock()
	defer c.urlMu.RUnlock()
	return c.url
}

func (c *Client) setURL(u string) {
	c.urlMu.Lock()
	defer c.urlMu.Unlock()
	c.url = u
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.setStateLocked(s)
}

func (c *Client) setStateLocked(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	c.notify(s)
}

// dropEpoch marks the client Disconnected if epoch is still the current,
// connected one. It reports whether the state changed.
func (c *Client) dropEpoch(epoch uint64) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.epoch.Load() != epoch || c.State() != Connected {
		return false
	}
	c.setStateLocked(Disconnected)
	return true
}

func (c *Client) notify(s State) {
	c.metrics.SetConnectionState(int(s))
	c.listenerMu.Lock()
	listeners := append([]func(State){}, c.listeners...)
	c.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// Connect establishes the first connection. The caller decides whether a
// failure is fatal.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.gate.Acquire(ctx); err != nil {
		return err
	}
	defer c.gate.Release()
	return c.dialLocked(ctx)
}

// Reconnect tears down the current connection and dials a freshly minted
// endpoint. Other callers queue on the gate meanwhile. On failure the client
// stays Disconnected.
func (c *Client) Reconnect(ctx context.Context) error {
	if err := c.gate.Acquire(ctx); err != nil {
		return err
	}
	defer c.gate.Release()

	c.setState(Reconnecting)
	if c.sess != nil {
		c.sess.close()
		c.sess = nil
	}
	err := c.dialLocked(ctx)
	c.metrics.ObserveReconnect(err == nil)
	return err
}

func (c *Client) dialLocked(ctx context.Context) error {
	u, err := c.endpoints.Endpoint()
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("mint endpoint: %w", err)
	}
	c.setURL(u)

	conn, err := c.dialer.Dial(ctx, u)
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("dial database actor: %w", err)
	}

	c.stateMu.Lock()
	s := newSession(conn, c.epoch.Add(1))
	c.sess = s
	c.setStateLocked(Connected)
	c.stateMu.Unlock()
	c.logger.Info(ctx, "connected to database actor", "url", endpoint.Redact(u), "epoch", s.epoch)

	go s.readLoop(
		func(id string, d delivery) {
			switch d {
			case discarded:
				c.logger.Warn(context.Background(), "discarding reply of abandoned request", "id", id, "epoch", s.epoch)
			case unmatched:
				c.logger.Warn(context.Background(), "dropping unmatched reply", "id", id, "epoch", s.epoch)
			}
		},
		func(err error) { c.sessionEnded(s, err) },
	)
	return nil
}

// sessionEnded runs on the reader goroutine once a connection fails or is closed.
func (c *Client) sessionEnded(s *session, err error) {
	if c.dropEpoch(s.epoch) {
		c.logger.Error(context.Background(), "database actor connection lost", "epoch", s.epoch, "error", err)
	}
}

// markBroken closes s after a transport failure. The client stays
// Disconnected until the next scheduled reconnect.
func (c *Client) markBroken(s *session, err error) {
	s.close()
	if c.dropEpoch(s.epoch) {
		c.logger.Error(context.Background(), "transport failure", "epoch", s.epoch, "error", err)
	}
}

// Do sends req and returns the raw reply addressed to it. The request id is
// filled in when empty.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	payload, err := Encode(req)
	if err != nil {
		return nil, err
	}

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	raw, err := c.roundTrip(ctx, req.ID, payload)
	c.metrics.ObserveRequest(req.Table, string(req.Action), err == nil)
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, id string, payload []byte) ([]byte, error) {
	start := time.Now()
	if err := c.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	c.metrics.ObserveGateWait(time.Since(start))

	held := true
	release := func() {
		if held {
			held = false
			c.gate.Release()
		}
	}
	defer release()

	s := c.sess
	if s == nil {
		return nil, ErrNotConnected
	}
	reply, err := s.expect(id)
	if err != nil {
		return nil, err
	}
	if err := s.conn.WriteMessage(ctx, payload); err != nil {
		s.forget(id)
		c.markBroken(s, err)
		return nil, &SendError{Err: err}
	}
	if !c.cfg.Serial {
		release()
	}

	select {
	case msg, ok := <-reply:
		if !ok {
			return nil, ErrNoReply
		}
		return msg, nil
	case <-ctx.Done():
		s.abandon(id)
		return nil, ctx.Err()
	}
}

// Ping sends a liveness probe. It does not wait for the pong.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.gate.Acquire(ctx); err != nil {
		return err
	}
	defer c.gate.Release()

	s := c.sess
	if s == nil || s.isClosed() {
		return ErrNotConnected
	}
	if err := s.conn.Ping(ctx); err != nil {
		c.markBroken(s, err)
		return &SendError{Err: err}
	}
	return nil
}

// Run keeps the reconnect and heartbeat tasks alive until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		every(ctx, c.cfg.ReconnectInterval, c.reconnectTick)
		return nil
	})
	g.Go(func() error {
		every(ctx, c.cfg.HeartbeatInterval, c.heartbeatTick)
		return nil
	})
	return g.Wait()
}

func (c *Client) reconnectTick(ctx context.Context) {
	if err := c.Reconnect(ctx); err != nil {
		c.logger.Error(ctx, "scheduled reconnect failed", "error", err)
		return
	}
	c.logger.Info(ctx, "reconnected to database actor", "epoch", c.epoch.Load())
}

func (c *Client) heartbeatTick(ctx context.Context) {
	err := c.Ping(ctx)
	c.metrics.ObserveHeartbeat(err == nil)
	if err != nil {
		c.logger.Warn(ctx, "heartbeat failed", "error", err)
	}
}

func every(ctx context.Context, d time.Duration, fn func(context.Context)) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}

// Close shuts the connection. Background tasks are stopped by cancelling the
// context given to Run.
func (c *Client) Close() error {
	if err := c.gate.Acquire(context.Background()); err != nil {
		return err
	}
	defer c.gate.Release()
	c.setState(Disconnected)
	if c.sess != nil {
		c.sess.close()
		c.sess = nil
	}
	return nil
}
