// Package api provides the HTTP/JSON transport for the dots-and-boxes
// decision engine, plus WebSocket and SSE variants for interactive clients.
package api

import (
	"github.com/yourusername/dabengine/internal/grid"
	"github.com/yourusername/dabengine/pkg/engine"
)

// DefaultPlayerID is assumed when a request does not name the agent.
const DefaultPlayerID = "ai-player"

// ============================================================================
// Request Types
// ============================================================================

// MoveRequest is the request body for choosing a move.
type MoveRequest struct {
	Board    *grid.Board `json:"board"`               // Current board state
	PlayerID string      `json:"player_id,omitempty"` // Agent ID (default "ai-player")
}

// UpdateRequest is the request body for feeding back an observed outcome.
type UpdateRequest struct {
	Board            *grid.Board `json:"board"`                       // Board after the move resolved
	Reward           float64     `json:"reward,omitempty"`            // Explicit reward; 0 = derive it
	CompletedSquares []string    `json:"completed_squares,omitempty"` // Box keys completed this transition
	PlayerID         string      `json:"player_id,omitempty"`         // Agent ID (default "ai-player")
}

// ClassifyRequest is the request body for tactical move classification.
type ClassifyRequest struct {
	Board *grid.Board `json:"board"` // Board state to classify
}

// ============================================================================
// Response Types
// ============================================================================

// LineCoords is a chosen edge in endpoint-coordinate form.
type LineCoords struct {
	Row1 int `json:"row1"`
	Col1 int `json:"col1"`
	Row2 int `json:"row2"`
	Col2 int `json:"col2"`
}

// MoveResponse is the response for a chosen move. Move is null when no legal
// moves remain.
type MoveResponse struct {
	Move *LineCoords `json:"move"`
}

// UpdateResponse is the response for an outcome update.
type UpdateResponse struct {
	Status string  `json:"status"`           // "updated" or "no_prior_decision"
	NewQ   float64 `json:"new_q"`            // Updated value estimate
	Reward float64 `json:"reward,omitempty"` // Reward actually applied
}

// ClassifyResponse lists each tactical tier as canonical edge keys, plus the
// risk score of every unsafe move.
type ClassifyResponse struct {
	Completing []string       `json:"completing"`
	Strategic  []string       `json:"strategic"`
	Safe       []string       `json:"safe"`
	Unsafe     []string       `json:"unsafe"`
	All        []string       `json:"all"`
	Risk       map[string]int `json:"risk,omitempty"` // Unsafe edge key -> boxes conceded
}

// InfoResponse is the learning-state snapshot.
type InfoResponse struct {
	ExplorationRate float64           `json:"exploration_rate"`
	QTableSize      int               `json:"q_table_size"`
	LearningRate    float64           `json:"learning_rate"`
	DiscountFactor  float64           `json:"discount_factor"`
	Values          engine.ValueStats `json:"values"`
}

// ErrorResponse is returned when a request fails.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error code
}

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status  string     `json:"status"`         // "ok" or "error"
	Version string     `json:"version"`        // Engine version
	Ready   bool       `json:"ready"`          // Whether the engine is loaded
	Pool    *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// ============================================================================
// Helper Functions
// ============================================================================

// edgeToCoords converts a chosen edge to its wire form.
func edgeToCoords(e *grid.Edge) *LineCoords {
	if e == nil {
		return nil
	}
	return &LineCoords{
		Row1: e.A.Row, Col1: e.A.Col,
		Row2: e.B.Row, Col2: e.B.Col,
	}
}

// edgeKeys converts edges to their canonical keys, preserving order. Always
// returns a non-nil slice so tiers encode as [] rather than null.
func edgeKeys(edges []grid.Edge) []string {
	keys := make([]string, len(edges))
	for i, e := range edges {
		keys[i] = e.Key()
	}
	return keys
}

// tiersToResponse converts a classification to its wire form, including risk
// scores for the unsafe tier.
func tiersToResponse(b *grid.Board, tiers engine.MoveTiers) *ClassifyResponse {
	resp := &ClassifyResponse{
		Completing: edgeKeys(tiers.Completing),
		Strategic:  edgeKeys(tiers.Strategic),
		Safe:       edgeKeys(tiers.Safe),
		Unsafe:     edgeKeys(tiers.Unsafe),
		All:        edgeKeys(tiers.All),
	}
	if len(tiers.Unsafe) > 0 {
		resp.Risk = make(map[string]int, len(tiers.Unsafe))
		for _, e := range tiers.Unsafe {
			resp.Risk[e.Key()] = engine.Risk(b, e)
		}
	}
	return resp
}

// statsToResponse converts an engine snapshot to its wire form.
func statsToResponse(stats engine.EngineStats) *InfoResponse {
	return &InfoResponse{
		ExplorationRate: stats.ExplorationRate,
		QTableSize:      stats.TableStates,
		LearningRate:    stats.LearningRate,
		DiscountFactor:  stats.DiscountFactor,
		Values:          stats.Values,
	}
}
