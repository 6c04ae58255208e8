package binance

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultMaxReconnectInterval = 30 * time.Second

// WSClient delivers combined-stream frames from one websocket connection and
// keeps it alive across disconnects.
type WSClient struct {
	dialer               *websocket.Dialer
	maxReconnectInterval time.Duration
	logger               *zap.Logger
}

// NewWSClient creates a websocket client. A zero maxReconnectInterval selects
// 30 seconds.
func NewWSClient(handshakeTimeout, maxReconnectInterval time.Duration, logger *zap.Logger) *WSClient {
	if maxReconnectInterval <= 0 {
		maxReconnectInterval = defaultMaxReconnectInterval
	}
	return &WSClient{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		maxReconnectInterval: maxReconnectInterval,
		logger:               logger,
	}
}

// Listen connects to url and passes every frame to handle, in delivery order,
// on the calling goroutine. Dial and read failures trigger a reconnect with
// exponential backoff. It returns when ctx is done.
func (c *WSClient) Listen(ctx context.Context, url string, handle func([]byte)) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.maxReconnectInterval
	if bo.InitialInterval > c.maxReconnectInterval {
		bo.InitialInterval = c.maxReconnectInterval
	}

	for {
		conn, _, err := c.dialer.DialContext(ctx, url, nil)
		if err == nil {
			c.logger.Info("WebSocket connected", zap.String("url", url))
			bo.Reset()
			err = c.readLoop(ctx, conn, handle)
		} else {
			err = fmt.Errorf("dial: %w", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		sleep := bo.NextBackOff()
		if sleep == backoff.Stop {
			sleep = c.maxReconnectInterval
		}
		c.logger.Warn("WebSocket disconnected, reconnecting",
			zap.String("url", url), zap.Duration("backoff", sleep), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

func (c *WSClient) readLoop(ctx context.Context, conn *websocket.Conn, handle func([]byte)) error {
	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		handle(msg)
	}
}
