package server

import (
	"net/http"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

func (s *DashboardServer) startHub() {
	s.hubOnce.Do(func() {
		go s.handleWebsockets()
	})
}

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.dropClient(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			// Send initial view on connect
			if !client.push(viewMessage(s.buildView(client.Tab()))) {
				s.dropClient(client)
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.dropClient(client)
			}

		case <-s.refresh:
			// One projection per tab, shared by every client on it
			views := make(map[models.Category]*models.MPushMessage)
			for client := range s.clients {
				tab := client.Tab()
				msg, ok := views[tab]
				if !ok {
					msg = viewMessage(s.buildView(tab))
					views[tab] = msg
				}
				if !client.push(msg) {
					// Client too slow, disconnect to prevent Hub blocking
					s.dropClient(client)
				}
			}
		}
	}
}

func (s *DashboardServer) dropClient(client *Client) {
	delete(s.clients, client)
	s.clientCount.Store(int64(len(s.clients)))
	client.close()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn, s.defaultTab())

	select {
	case s.register <- client:
	case <-s.done:
		client.close()
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies one client command. Unparseable input drops the
// connection; unknown commands are ignored.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	cmd, err := decodeCommand(message)
	if err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "select_tab":
		tab, ok := models.ParseCategory(cmd.Tab)
		if !ok {
			s.Logger.Debug("Ignoring unknown tab '%s'", cmd.Tab)
			return
		}
		client.SetTab(tab)
		client.push(viewMessage(s.buildView(tab)))

	case "mount_chart":
		if client.loader == nil {
			client.push(chartMessage(failedChart(cmd.Symbol)))
			return
		}
		client.loader.Load(cmd.Symbol)

	case "unmount_chart":
		if client.loader != nil {
			client.loader.Unload()
		}

	default:
		s.Logger.Debug("Ignoring client command '%s'", cmd.Command)
	}
}
