package realtime

import (
	"reflect"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/config"
)

// Channel maintains one live push connection to the server and delivers
// named events to registered handlers in server send order.
//
// Connection failures never surface to callers: the channel retries
// forever, and a broken link is observable only as the absence of events
// until reconnection succeeds.
type Channel struct {
	url         string
	dialTimeout time.Duration
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	handlers map[EventName][]Handler
	conn     *websocket.Conn
	started  bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel builds a channel and connects immediately.
func NewChannel(cfg config.RealtimeConfig, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Channel{
		url:         cfg.URL,
		dialTimeout: cfg.DialTimeout(),
		baseDelay:   cfg.ReconnectDelay(),
		maxDelay:    cfg.ReconnectDelayMax(),
		logger:      logger,
		handlers:    make(map[EventName][]Handler),
		done:        make(chan struct{}),
	}
	c.Connect()
	return c
}

// Connect starts the connection loop. Idempotent: redundant calls while a
// loop is running (or after Close) do nothing, so the channel never holds
// more than one connection.
func (c *Channel) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.isClosed() {
		return
	}
	c.started = true
	go c.run()
}

// On registers a handler for the named event. Handlers for the same event
// fire in registration order and survive reconnection.
func (c *Channel) On(name EventName, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = append(c.handlers[name], h)
}

// Off removes a previously registered handler. Function identity decides
// removal, so the same function value passed to On must be passed here.
func (c *Channel) Off(name EventName, h Handler) {
	target := reflect.ValueOf(h).Pointer()
	c.mu.Lock()
	defer c.mu.Unlock()
	registered := c.handlers[name]
	for i, existing := range registered {
		if reflect.ValueOf(existing).Pointer() == target {
			c.handlers[name] = append(registered[:i:i], registered[i+1:]...)
			return
		}
	}
}

// Close stops the connection loop and drops the current connection. The
// channel cannot be reused afterwards.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	})
	return nil
}

// run dials, reads until the connection breaks, and retries forever. The
// first retry after a failure waits baseDelay; the delay doubles up to
// maxDelay and resets after every successful connect.
func (c *Channel) run() {
	delay := c.baseDelay
	attempt := 0
	for {
		conn, err := c.dial()
		if c.isClosed() {
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err == nil {
			attempt = 0
			delay = c.baseDelay
			c.logger.Info("realtime channel connected", zap.String("url", c.url))
			c.readLoop(conn)
			if c.isClosed() {
				return
			}
			c.logger.Warn("realtime channel disconnected")
		} else {
			attempt++
			c.logger.Warn("realtime dial failed",
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", delay),
				zap.Error(err))
		}

		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func (c *Channel) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, resp, err := dialer.Dial(c.url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return conn, nil
}

// readLoop consumes frames until the connection breaks. Frames are decoded
// at this boundary; malformed or unknown frames are dropped with a log so
// one bad message cannot stall the stream.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		event, err := decodeFrame(raw)
		if err != nil {
			c.logger.Warn("dropping push message", zap.Error(err))
			continue
		}
		c.dispatch(*event)
	}
}

func (c *Channel) dispatch(event Event) {
	c.mu.Lock()
	registered := append([]Handler{}, c.handlers[event.Name]...)
	c.mu.Unlock()

	for _, h := range registered {
		h(event)
	}
}

func (c *Channel) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
