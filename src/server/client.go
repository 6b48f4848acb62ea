package server

import (
	"encoding/json"
	"sync"
	"time"

	"market-dashboard/src/history"
	"market-dashboard/src/models"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // commands are small
	sendBuffer     = 64

	// Commands per second a client may send; excess commands are dropped
	commandRate  = 20
	commandBurst = 40
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one dashboard websocket connection. It owns its news tab and the
// history loader of its chart.
type Client struct {
	hub     *DashboardServer
	conn    *websocket.Conn
	loader  *history.Loader
	limiter *rate.Limiter

	mu     sync.Mutex
	tab    models.Category
	send   chan *models.MPushMessage
	closed bool
}

func newClient(s *DashboardServer, conn *websocket.Conn, tab models.Category) *Client {
	c := &Client{
		hub:     s,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(commandRate), commandBurst),
		tab:     tab,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MPushMessage, sendBuffer),
	}
	if s.History != nil {
		c.loader = history.NewLoader(s.History, s.Charts, s.Config.Storage.HistoryWindow, s.Logger)
		c.loader.OnChange(func(view models.MChartView) {
			c.push(chartMessage(view))
		})
	}
	return c
}

// -----------------------------------------------------------------------------

func (c *Client) Tab() models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

func (c *Client) SetTab(tab models.Category) {
	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()
}

// push queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) push(msg *models.MPushMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close releases the chart and ends writePump. Safe to call repeatedly.
func (c *Client) close() {
	if c.loader != nil {
		c.loader.Close()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		if !c.limiter.Allow() {
			c.hub.Logger.Debug("Dropping command from rate-limited client")
			continue
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

func decodeCommand(message []byte) (models.MClientCommand, error) {
	var cmd models.MClientCommand
	err := json.Unmarshal(message, &cmd)
	return cmd, err
}
