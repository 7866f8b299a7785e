package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/dabengine/pkg/engine"
)

// getTestEngine returns an in-memory engine with exploration disabled so
// handler tests are deterministic.
func getTestEngine() *engine.Engine {
	return engine.NewEngine(engine.Options{Exploration: -1, SaveSampling: -1})
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Ready {
		t.Error("Expected ready = false with no engine")
	}
}

func TestHealthHandlerReady(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	var health HealthResponse
	json.NewDecoder(w.Result().Body).Decode(&health)

	if !health.Ready {
		t.Error("Expected ready = true when engine is set")
	}
}

func TestHealthHandlerWithPool(t *testing.T) {
	pool := NewWorkerPool(DefaultPoolConfig())
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", pool)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	h.Health(w, req)

	var health HealthResponse
	json.NewDecoder(w.Result().Body).Decode(&health)

	if health.Pool == nil {
		t.Fatal("Expected pool stats in health response")
	}
	if health.Pool.MaxDecide != DefaultPoolConfig().MaxDecideWorkers {
		t.Errorf("MaxDecide = %d, want %d",
			health.Pool.MaxDecide, DefaultPoolConfig().MaxDecideWorkers)
	}
}

func TestMoveHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid empty board",
			body:       `{"board":{"size":5,"lines":{},"squares":{}},"player_id":"ai"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "board with lines",
			body:       `{"board":{"size":5,"lines":{"0,0-0,1":true,"2,2-3,2":true},"squares":{}}}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing board",
			body:       `{"player_id":"ai"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_BOARD",
		},
		{
			name:       "malformed edge key",
			body:       `{"board":{"size":5,"lines":{"bogus":true},"squares":{}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_BOARD",
		},
		{
			name:       "non-adjacent edge key",
			body:       `{"board":{"size":5,"lines":{"0,0-2,0":true},"squares":{}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_BOARD",
		},
		{
			name:       "invalid JSON",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/move", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Move(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				var errResp ErrorResponse
				if err := json.NewDecoder(w.Result().Body).Decode(&errResp); err != nil {
					t.Fatalf("Decode error: %v", err)
				}
				if errResp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", errResp.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestMoveHandlerReturnsFirstSafeMove(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	w := postJSON(t, h.Move, "/api/move", map[string]interface{}{
		"board": map[string]interface{}{"size": 5, "lines": map[string]bool{}, "squares": map[string]string{}},
	})

	var resp MoveResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if resp.Move == nil {
		t.Fatal("Expected a move on a non-full board")
	}
	want := LineCoords{Row1: 0, Col1: 0, Row2: 0, Col2: 1}
	if *resp.Move != want {
		t.Errorf("move = %+v, want %+v", *resp.Move, want)
	}
}

func TestMoveHandlerNullMoveOnFullBoard(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	lines := map[string]bool{}
	for r := 0; r < 5; r++ {
		for c := 0; c < 4; c++ {
			lines[fmt.Sprintf("%d,%d-%d,%d", r, c, r, c+1)] = true
			lines[fmt.Sprintf("%d,%d-%d,%d", c, r, c+1, r)] = true
		}
	}

	w := postJSON(t, h.Move, "/api/move", map[string]interface{}{
		"board": map[string]interface{}{"size": 5, "lines": lines, "squares": map[string]string{}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp MoveResponse
	json.NewDecoder(w.Result().Body).Decode(&resp)
	if resp.Move != nil {
		t.Errorf("Expected null move on a full board, got %+v", *resp.Move)
	}
}

func TestUpdateHandlerNoPriorDecision(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	w := postJSON(t, h.Update, "/api/update", map[string]interface{}{
		"board":  map[string]interface{}{"size": 5, "lines": map[string]bool{}, "squares": map[string]string{}},
		"reward": 10.0,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp UpdateResponse
	json.NewDecoder(w.Result().Body).Decode(&resp)
	if resp.Status != "no_prior_decision" {
		t.Errorf("status = %q, want %q", resp.Status, "no_prior_decision")
	}
}

func TestUpdateHandlerAfterMove(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	board := map[string]interface{}{"size": 5, "lines": map[string]bool{}, "squares": map[string]string{}}
	if w := postJSON(t, h.Move, "/api/move", map[string]interface{}{"board": board}); w.Code != http.StatusOK {
		t.Fatalf("move status = %d", w.Code)
	}

	w := postJSON(t, h.Update, "/api/update", map[string]interface{}{
		"board":  board,
		"reward": 10.0,
	})

	var resp UpdateResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if resp.Status != "updated" {
		t.Errorf("status = %q, want %q", resp.Status, "updated")
	}
	// Q <- 0 + 0.2*(10 + 0.9*0 - 0)
	if resp.NewQ != 2.0 {
		t.Errorf("new_q = %v, want %v", resp.NewQ, 2.0)
	}
	if resp.Reward != 10.0 {
		t.Errorf("reward = %v, want %v", resp.Reward, 10.0)
	}
}

func TestClassifyHandlerEmptyBoard(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	w := postJSON(t, h.Classify, "/api/classify", map[string]interface{}{
		"board": map[string]interface{}{"size": 5, "lines": map[string]bool{}, "squares": map[string]string{}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp ClassifyResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if len(resp.All) != 40 {
		t.Errorf("all = %d moves, want 40", len(resp.All))
	}
	if len(resp.Safe) != 40 {
		t.Errorf("safe = %d moves, want 40 on an empty board", len(resp.Safe))
	}
	if len(resp.Completing) != 0 || len(resp.Strategic) != 0 || len(resp.Unsafe) != 0 {
		t.Errorf("unexpected non-safe tiers: %d completing, %d strategic, %d unsafe",
			len(resp.Completing), len(resp.Strategic), len(resp.Unsafe))
	}
	if resp.Risk != nil {
		t.Errorf("risk should be omitted with no unsafe moves, got %v", resp.Risk)
	}
}

func TestClassifyHandlerCompletingMove(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	// Box 0,0 has three sides, so its last edge completes it. Box 1,0 has
	// two sides, so its remaining edges are unsafe.
	w := postJSON(t, h.Classify, "/api/classify", map[string]interface{}{
		"board": map[string]interface{}{
			"size": 5,
			"lines": map[string]bool{
				"0,0-0,1": true, "0,0-1,0": true, "1,0-1,1": true,
				"1,0-2,0": true,
			},
			"squares": map[string]string{},
		},
	})

	var resp ClassifyResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(resp.Completing) != 1 || resp.Completing[0] != "0,1-1,1" {
		t.Errorf("completing = %v, want [0,1-1,1]", resp.Completing)
	}
	if len(resp.Risk) == 0 {
		t.Error("Expected risk scores for unsafe moves next to the open box")
	}
}

func TestInfoHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()

	h.Info(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp InfoResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if resp.ExplorationRate != 0 {
		t.Errorf("exploration_rate = %v, want 0 for an exploit-only engine", resp.ExplorationRate)
	}
	if resp.LearningRate != 0.2 {
		t.Errorf("learning_rate = %v, want 0.2", resp.LearningRate)
	}
	if resp.DiscountFactor != 0.9 {
		t.Errorf("discount_factor = %v, want 0.9", resp.DiscountFactor)
	}
	if resp.QTableSize != 0 {
		t.Errorf("q_table_size = %v, want 0", resp.QTableSize)
	}
}

// ============================================================================
// WebSocket Tests
// ============================================================================

// wsResult is the client-side shape of a WSResponse with a typed payload.
type wsResult struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

func dialTestWS(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	h := NewHandlers(getTestEngine(), "1.0.0")
	server := httptest.NewServer(http.HandlerFunc(h.WebSocket))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	return ws, func() {
		ws.Close()
		server.Close()
	}
}

func readWS(t *testing.T, ws *websocket.Conn) wsResult {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var result wsResult
	if err := ws.ReadJSON(&result); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	return result
}

func TestWebSocketPing(t *testing.T) {
	ws, cleanup := dialTestWS(t)
	defer cleanup()

	if err := ws.WriteJSON(WSMessage{Type: "ping", ID: "ping-1"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	result := readWS(t, ws)
	if result.Type != "pong" {
		t.Errorf("type = %q, want %q", result.Type, "pong")
	}
	if result.ID != "ping-1" {
		t.Errorf("id = %q, want %q", result.ID, "ping-1")
	}
}

func TestWebSocketMoveSession(t *testing.T) {
	ws, cleanup := dialTestWS(t)
	defer cleanup()

	payload := json.RawMessage(`{"board":{"size":5,"lines":{},"squares":{}}}`)
	if err := ws.WriteJSON(WSMessage{Type: "move", ID: "move-1", Payload: payload}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	result := readWS(t, ws)
	if result.Type != "result" {
		t.Fatalf("type = %q, want %q (error: %s)", result.Type, "result", result.Error)
	}
	var move MoveResponse
	if err := json.Unmarshal(result.Payload, &move); err != nil {
		t.Fatalf("payload decode error: %v", err)
	}
	if move.Move == nil {
		t.Fatal("Expected a move on a non-full board")
	}

	// The same connection carries the outcome back.
	payload = json.RawMessage(`{"board":{"size":5,"lines":{},"squares":{}},"reward":10}`)
	if err := ws.WriteJSON(WSMessage{Type: "update", ID: "update-1", Payload: payload}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	result = readWS(t, ws)
	if result.Type != "result" {
		t.Fatalf("type = %q, want %q (error: %s)", result.Type, "result", result.Error)
	}
	var update UpdateResponse
	if err := json.Unmarshal(result.Payload, &update); err != nil {
		t.Fatalf("payload decode error: %v", err)
	}
	if update.Status != "updated" {
		t.Errorf("status = %q, want %q", update.Status, "updated")
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	ws, cleanup := dialTestWS(t)
	defer cleanup()

	if err := ws.WriteJSON(WSMessage{Type: "bogus", ID: "x"}); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	result := readWS(t, ws)
	if result.Type != "error" {
		t.Errorf("type = %q, want %q", result.Type, "error")
	}
	if result.Error == "" {
		t.Error("Expected an error message for an unknown type")
	}
}
