package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"mentrachess/internal/core"
	"mentrachess/internal/processor"
	"mentrachess/internal/service"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil, []byte("test-secret-minimum-32-characters!!"))
	proc := processor.New(svc, "/nonexistent/engine-binary")
	t.Cleanup(proc.Close)
	return NewFiberApp(proc, svc, true)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, payload
}

func createTestGame(t *testing.T, app *fiber.App, fen string) core.GameResponse {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/v1/games", core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
		FEN:   fen,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create game status = %d: %s", status, body)
	}
	var state core.GameResponse
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode game response: %v", err)
	}
	return state
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	status, body := doJSON(t, app, "GET", "/health", nil)
	if status != fiber.StatusOK {
		t.Fatalf("health status = %d", status)
	}

	var health map[string]any
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["storage"] != "disabled" {
		t.Fatalf("storage health = %v, want disabled", health["storage"])
	}
}

func TestGameLifecycleOverREST(t *testing.T) {
	app := newTestApp(t)
	game := createTestGame(t, app, "")

	// Direct move.
	status, body := doJSON(t, app, "POST", "/api/v1/games/"+game.GameID+"/moves",
		core.MoveRequest{Source: "e2", Target: "e4"})
	if status != fiber.StatusOK {
		t.Fatalf("move status = %d: %s", status, body)
	}

	var state core.GameResponse
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode move response: %v", err)
	}
	if len(state.Moves) != 1 || state.Moves[0] != "e2e4" {
		t.Fatalf("moves = %v, want [e2e4]", state.Moves)
	}

	// Board rendering.
	status, body = doJSON(t, app, "GET", "/api/v1/games/"+game.GameID+"/board", nil)
	if status != fiber.StatusOK {
		t.Fatalf("board status = %d", status)
	}
	var board core.BoardResponse
	if err := json.Unmarshal(body, &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if board.FEN != state.FEN {
		t.Fatalf("board FEN %q does not match game FEN %q", board.FEN, state.FEN)
	}

	// Undo.
	status, _ = doJSON(t, app, "POST", "/api/v1/games/"+game.GameID+"/undo",
		core.UndoRequest{Count: 1})
	if status != fiber.StatusOK {
		t.Fatalf("undo status = %d", status)
	}

	// Delete.
	status, _ = doJSON(t, app, "DELETE", "/api/v1/games/"+game.GameID, nil)
	if status != fiber.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	status, _ = doJSON(t, app, "GET", "/api/v1/games/"+game.GameID, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("deleted game fetch status = %d", status)
	}
}

func TestVoiceFlowOverREST(t *testing.T) {
	app := newTestApp(t)
	game := createTestGame(t, app, "1k6/8/8/8/8/8/4K3/R6R w - - 0 1")

	// Ambiguous command returns a clarification prompt.
	status, body := doJSON(t, app, "POST", "/api/v1/games/"+game.GameID+"/voice",
		core.VoiceMoveRequest{Piece: "r", Target: "d1"})
	if status != fiber.StatusOK {
		t.Fatalf("voice status = %d: %s", status, body)
	}

	var state core.GameResponse
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode voice response: %v", err)
	}
	if state.Clarification == nil || len(state.Clarification.Candidates) != 2 {
		t.Fatalf("expected 2-candidate clarification, got %+v", state.Clarification)
	}

	// Resolving with a spoken ordinal executes the chosen rook.
	status, body = doJSON(t, app, "POST", "/api/v1/games/"+game.GameID+"/clarify",
		core.ClarifyRequest{Selection: "number two"})
	if status != fiber.StatusOK {
		t.Fatalf("clarify status = %d: %s", status, body)
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode clarify response: %v", err)
	}
	if len(state.Moves) != 1 || state.Moves[0] != "h1d1" {
		t.Fatalf("moves = %v, want [h1d1]", state.Moves)
	}

	// Clarifying again conflicts: nothing is pending.
	status, _ = doJSON(t, app, "POST", "/api/v1/games/"+game.GameID+"/clarify",
		core.ClarifyRequest{Selection: "1"})
	if status != fiber.StatusConflict {
		t.Fatalf("stale clarify status = %d, want %d", status, fiber.StatusConflict)
	}
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)
	game := createTestGame(t, app, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{
			name:   "invalid game id format",
			method: "GET",
			path:   "/api/v1/games/not-a-uuid",
			status: fiber.StatusBadRequest,
		},
		{
			name:   "unknown game",
			method: "GET",
			path:   "/api/v1/games/00000000-0000-0000-0000-000000000000",
			status: fiber.StatusNotFound,
		},
		{
			name:   "move without source",
			method: "POST",
			path:   "/api/v1/games/" + game.GameID + "/moves",
			body:   map[string]string{"target": "e4"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "voice piece too long",
			method: "POST",
			path:   "/api/v1/games/" + game.GameID + "/voice",
			body:   map[string]string{"piece": "rook", "target": "d1"},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "undo zero count",
			method: "POST",
			path:   "/api/v1/games/" + game.GameID + "/undo",
			body:   map[string]int{"count": 0},
			status: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d: %s", status, tt.status, body)
			}
		})
	}
}

func TestContentTypeEnforced(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/v1/games",
		bytes.NewReader([]byte(`{"white":{"type":1},"black":{"type":1}}`)))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnsupportedMediaType)
	}
}
