package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024 * 1024 // whole trees are pushed on every change
)

// -----------------------------------------------------------------------------
// WebsocketTransport
// -----------------------------------------------------------------------------

// WebsocketTransport reads the feed tree from a websocket endpoint. A message
// is either the bare tree or an MFeedMessage envelope. The connection is
// re-established with exponential backoff, rotating proxies between attempts.
type WebsocketTransport struct {
	URL          string
	Dialer       *websocket.Dialer
	ProxyManager *helpers.ProxyManager
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewWebsocketTransport(cfg models.MFeedConfig, log *logger.Logger) *WebsocketTransport {
	if log == nil {
		log = logger.NewNop()
	}
	t := &WebsocketTransport{
		URL:          cfg.URL,
		ProxyManager: helpers.NewProxyManager(cfg.Proxies, log),
		ReconnectMin: time.Duration(cfg.ReconnectMinSeconds) * time.Second,
		ReconnectMax: time.Duration(cfg.ReconnectMaxSeconds) * time.Second,
		Logger:       log,
	}
	t.Dialer = &websocket.Dialer{
		Proxy:            t.ProxyManager.Proxy,
		HandshakeTimeout: 10 * time.Second,
	}
	return t
}

func (t *WebsocketTransport) Name() string {
	return "websocket"
}

// -----------------------------------------------------------------------------

// Listen starts the connection loop in the background. The returned stop
// closes the connection and waits for the loop to exit.
func (t *WebsocketTransport) Listen(ctx context.Context, path string, onValue func([]byte), onError func(error)) (func(), error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url '%s': %w", t.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("feed url '%s' must use ws or wss", t.URL)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.run(ctx, u.String(), path, onValue, onError)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

// -----------------------------------------------------------------------------

func (t *WebsocketTransport) run(ctx context.Context, endpoint, path string, onValue func([]byte), onError func(error)) {
	attempt := 0
	for ctx.Err() == nil {
		conn, err := t.dial(ctx, endpoint, path)
		if err == nil {
			t.Logger.Info("Feed connected: %s (path %s)", endpoint, path)
			attempt = 0
			err = t.read(ctx, conn, path, onValue, onError)
		}
		if ctx.Err() != nil {
			return
		}
		onError(err)

		delay := helpers.Backoff(attempt, t.ReconnectMin, t.ReconnectMax)
		t.Logger.Warning("Feed connection lost (%v). Reconnecting in %s", err, delay)
		attempt++
		t.ProxyManager.RotateProxy()

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// -----------------------------------------------------------------------------

func (t *WebsocketTransport) dial(ctx context.Context, endpoint, path string) (*websocket.Conn, error) {
	conn, _, err := t.Dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(models.MSubscribeCommand{Command: "subscribe", Path: path}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", path, err)
	}
	return conn, nil
}

// -----------------------------------------------------------------------------

// read pumps messages until the connection fails or ctx is cancelled. A
// watchdog goroutine sends pings and closes the connection on cancel.
func (t *WebsocketTransport) read(ctx context.Context, conn *websocket.Conn, path string, onValue func([]byte), onError func(error)) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			case <-stopped:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		tree, err := unwrapMessage(message, path)
		if err != nil {
			onError(err)
			continue
		}
		if tree != nil {
			onValue(tree)
		}
	}
}

// -----------------------------------------------------------------------------

// unwrapMessage returns the tree carried by message. Envelopes for another
// path yield nil; an ERROR envelope yields an error.
func unwrapMessage(message []byte, path string) ([]byte, error) {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return trimmed, nil
	}
	_, hasType := probe["type"]
	_, hasData := probe["data"]
	if !hasType {
		return trimmed, nil
	}

	var envelope models.MFeedMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed, nil
	}

	switch envelope.Type {
	case "INITIAL", "UPDATE":
		if !hasData {
			return nil, fmt.Errorf("%s message without data", envelope.Type)
		}
		if envelope.Path != "" && envelope.Path != path {
			return nil, nil
		}
		return envelope.Data, nil
	case "ERROR":
		var reason string
		_ = json.Unmarshal(envelope.Data, &reason)
		return nil, fmt.Errorf("feed endpoint error: %s", reason)
	default:
		return trimmed, nil
	}
}
