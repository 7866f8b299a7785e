package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/dabengine/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "move", "update", "classify", "info", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections for playing a full game over one
// connection: alternating move and update messages, with classify and info
// available at any point.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &WSClient{conn: conn, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "move":
		c.handleMove(msg)
	case "update":
		c.handleUpdate(msg)
	case "classify":
		c.handleClassify(msg)
	case "info":
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: statsToResponse(c.handlers.engine.Stats())}
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Board == nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = DefaultPlayerID
	}
	move := c.handlers.engine.ChooseMove(req.Board, req.PlayerID)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: MoveResponse{Move: edgeToCoords(move)}}
}

func (c *WSClient) handleUpdate(msg WSMessage) {
	var req UpdateRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Board == nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = DefaultPlayerID
	}
	result := c.handlers.engine.ApplyOutcome(req.Board, req.Reward, req.CompletedSquares, req.PlayerID)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: UpdateResponse{
		Status: result.Status,
		NewQ:   result.NewValue,
		Reward: result.Reward,
	}}
}

func (c *WSClient) handleClassify(msg WSMessage) {
	var req ClassifyRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Board == nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	tiers := engine.Classify(req.Board)
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: tiersToResponse(req.Board, tiers)}
}
