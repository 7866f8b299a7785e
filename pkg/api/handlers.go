package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourusername/dabengine/internal/grid"
	"github.com/yourusername/dabengine/pkg/engine"
)

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine  *engine.Engine
	version string
	pool    *WorkerPool
}

// NewHandlers creates a Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return &Handlers{
		engine:  e,
		version: version,
	}
}

// NewHandlersWithPool creates a Handlers instance with a worker pool.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		engine:  e,
		version: version,
		pool:    pool,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// decodeBoardRequest decodes a request whose body carries a board, mapping
// malformed edge/box keys to a 400 with a dedicated code.
func decodeBoardRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, grid.ErrBadKey) {
			writeError(w, http.StatusBadRequest, err.Error(), "MALFORMED_BOARD")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		}
		return false
	}
	return true
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
	}

	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Move handles POST /api/move: choose one edge for the supplied board.
// A null move in the response means no legal moves remain.
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireDecide(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseDecide()
	}

	var req MoveRequest
	if !decodeBoardRequest(w, r, &req) {
		return
	}
	if req.Board == nil {
		writeError(w, http.StatusBadRequest, "board is required", "MISSING_BOARD")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = DefaultPlayerID
	}

	move := h.engine.ChooseMove(req.Board, req.PlayerID)
	writeJSON(w, http.StatusOK, MoveResponse{Move: edgeToCoords(move)})
}

// Update handles POST /api/update: apply the observed outcome of the last
// decision to the value table.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireUpdate(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseUpdate()
	}

	var req UpdateRequest
	if !decodeBoardRequest(w, r, &req) {
		return
	}
	if req.Board == nil {
		writeError(w, http.StatusBadRequest, "board is required", "MISSING_BOARD")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = DefaultPlayerID
	}

	result := h.engine.ApplyOutcome(req.Board, req.Reward, req.CompletedSquares, req.PlayerID)
	writeJSON(w, http.StatusOK, UpdateResponse{
		Status: result.Status,
		NewQ:   result.NewValue,
		Reward: result.Reward,
	})
}

// Classify handles POST /api/classify: partition the board's legal moves
// into tactical tiers without choosing one or touching learning state.
func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireDecide(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseDecide()
	}

	var req ClassifyRequest
	if !decodeBoardRequest(w, r, &req) {
		return
	}
	if req.Board == nil {
		writeError(w, http.StatusBadRequest, "board is required", "MISSING_BOARD")
		return
	}

	tiers := engine.Classify(req.Board)
	writeJSON(w, http.StatusOK, tiersToResponse(req.Board, tiers))
}

// Info handles GET /api/info: a read-only snapshot of the learning state.
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsToResponse(h.engine.Stats()))
}
