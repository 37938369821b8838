package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pokerhub/engine"
	"pokerhub/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub tracks WebSocket watchers per table and fans projected states out to
// them. Each client gets its own projection, so hole cards only travel to
// their owner.
type Hub struct {
	server  *Server
	logger  *log.Logger
	mu      sync.RWMutex
	byTable map[string]map[*wsClient]struct{}
}

type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	tableID string
}

type wsInbound struct {
	Type    string `json:"type"`
	TableID string `json:"tableId"`
}

type wsOutbound struct {
	Type  string           `json:"type"`
	Table engine.TableView `json:"table"`
}

func NewHub(server *Server, logger *log.Logger) *Hub {
	return &Hub{
		server:  server,
		logger:  logger.With("component", "ws"),
		byTable: make(map[string]map[*wsClient]struct{}),
	}
}

// HandleUpgrade authenticates via the token query parameter and upgrades.
// Browsers cannot set headers on WebSocket dials, hence the query token.
func (h *Hub) HandleUpgrade(c *gin.Context) {
	id, err := h.server.auth.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}
	client := &wsClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: id.UserID,
	}
	go client.writePump()
	go client.readPump()
}

// BroadcastTable sends each watcher of the table its own projection.
func (h *Hub) BroadcastTable(gs *models.GameState) {
	h.mu.RLock()
	watchers := make([]*wsClient, 0, len(h.byTable[gs.TableID]))
	for client := range h.byTable[gs.TableID] {
		watchers = append(watchers, client)
	}
	h.mu.RUnlock()

	for _, client := range watchers {
		msg, err := json.Marshal(wsOutbound{Type: "table", Table: engine.Project(gs, client.userID)})
		if err != nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// Slow consumer; drop the update rather than block the hub.
		}
	}
}

func (h *Hub) subscribe(client *wsClient, tableID string) {
	h.mu.Lock()
	if client.tableID != "" {
		delete(h.byTable[client.tableID], client)
	}
	client.tableID = tableID
	if h.byTable[tableID] == nil {
		h.byTable[tableID] = make(map[*wsClient]struct{})
	}
	h.byTable[tableID][client] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	if client.tableID != "" {
		delete(h.byTable[client.tableID], client)
		if len(h.byTable[client.tableID]) == 0 {
			delete(h.byTable, client.tableID)
		}
	}
	h.mu.Unlock()
	close(client.send)
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsInbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == "subscribe" && msg.TableID != "" {
			c.hub.subscribe(c, msg.TableID)
			// Send the current state right away so the client does not
			// wait for the next action at the table.
			if gs, err := c.hub.server.store.GetTable(context.Background(), msg.TableID); err == nil {
				if out, err := json.Marshal(wsOutbound{Type: "table", Table: engine.Project(gs, c.userID)}); err == nil {
					select {
					case c.send <- out:
					default:
					}
				}
			}
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
