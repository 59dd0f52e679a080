package processor

import (
	"strings"
	"testing"

	"mentrachess/internal/core"
	"mentrachess/internal/service"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	svc := service.New(nil, []byte("test-secret-minimum-32-characters!!"))
	p := New(svc, "/nonexistent/engine-binary")
	t.Cleanup(p.Close)
	return p
}

func createGame(t *testing.T, p *Processor, fen string) (string, core.GameResponse) {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
		FEN:   fen,
	}))
	if !resp.Success {
		t.Fatalf("create game failed: %+v", resp.Error)
	}
	state := resp.Data.(core.GameResponse)
	return state.GameID, state
}

func gameState(t *testing.T, p *Processor, gameID string) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewGetGameCommand(gameID))
	if !resp.Success {
		t.Fatalf("get game failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func TestCreateGameStartsAtInitialPosition(t *testing.T) {
	p := newTestProcessor(t)
	_, state := createGame(t, p, "")

	if !strings.HasPrefix(state.FEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq") {
		t.Fatalf("unexpected initial FEN %q", state.FEN)
	}
	if state.Turn != "w" || state.State != "ongoing" {
		t.Fatalf("unexpected initial state: turn %s, state %s", state.Turn, state.State)
	}
}

func TestCreateGameRejectsBadFEN(t *testing.T) {
	p := newTestProcessor(t)
	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
		FEN:   "not a position",
	}))
	if resp.Success {
		t.Fatalf("malformed FEN accepted")
	}
	if resp.Error.Code != core.ErrInvalidFEN {
		t.Fatalf("code = %s, want %s", resp.Error.Code, core.ErrInvalidFEN)
	}
}

func TestMakeMoveRejectionCarriesReason(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "")

	resp := p.Execute(NewMakeMoveCommand(gameID, core.MoveRequest{Source: "a1", Target: "a5"}))
	if resp.Success {
		t.Fatalf("illegal rook move accepted")
	}
	if resp.Error.Code != core.ErrInvalidMove {
		t.Fatalf("code = %s, want %s", resp.Error.Code, core.ErrInvalidMove)
	}
	if resp.Error.Details == "" {
		t.Fatalf("rejection has no reason detail")
	}

	// Rejected moves leave the game untouched.
	state := gameState(t, p, gameID)
	if len(state.Moves) != 0 || state.Turn != "w" {
		t.Fatalf("rejected move mutated the game: %+v", state)
	}
}

func TestVoiceMoveSingleCandidateExecutes(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "")

	resp := p.Execute(NewVoiceMoveCommand(gameID, core.VoiceMoveRequest{Piece: "n", Target: "f3"}))
	if !resp.Success {
		t.Fatalf("knight to f3 failed: %+v", resp.Error)
	}

	state := resp.Data.(core.GameResponse)
	if state.Clarification != nil {
		t.Fatalf("unambiguous move produced a clarification")
	}
	if len(state.Moves) != 1 || state.Moves[0] != "g1f3" {
		t.Fatalf("moves = %v, want [g1f3]", state.Moves)
	}
	if state.Turn != "b" {
		t.Fatalf("turn = %s after white's move, want b", state.Turn)
	}
}

func TestVoiceMoveNoCandidate(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "")

	resp := p.Execute(NewVoiceMoveCommand(gameID, core.VoiceMoveRequest{Piece: "q", Target: "h5"}))
	if resp.Success {
		t.Fatalf("unreachable queen move accepted")
	}
	if resp.Error.Code != core.ErrInvalidMove {
		t.Fatalf("code = %s, want %s", resp.Error.Code, core.ErrInvalidMove)
	}

	// The game stays in the normal state, not awaiting clarification.
	state := gameState(t, p, gameID)
	if state.Clarification != nil {
		t.Fatalf("failed command left a clarification pending")
	}
}

func TestVoiceMoveClarificationFlow(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "1k6/8/8/8/8/8/4K3/R6R w - - 0 1")

	// Two rooks reach d1: the command must not execute, only prompt.
	resp := p.Execute(NewVoiceMoveCommand(gameID, core.VoiceMoveRequest{Piece: "r", Target: "d1"}))
	if !resp.Success || !resp.Pending {
		t.Fatalf("ambiguous command response: %+v", resp)
	}

	state := resp.Data.(core.GameResponse)
	clar := state.Clarification
	if clar == nil {
		t.Fatalf("no clarification prompt in response")
	}
	if clar.Piece != "rook" || clar.Target != "d1" {
		t.Fatalf("prompt = %s to %s, want rook to d1", clar.Piece, clar.Target)
	}
	if len(clar.Candidates) != 2 {
		t.Fatalf("prompt has %d candidates, want 2", len(clar.Candidates))
	}
	if len(state.Moves) != 0 {
		t.Fatalf("ambiguous command executed a move: %v", state.Moves)
	}

	// Garbage selection: error, prompt stays pending.
	resp = p.Execute(NewClarifyCommand(gameID, core.ClarifyRequest{Selection: "banana"}))
	if resp.Success || resp.Error.Code != core.ErrAmbiguousMove {
		t.Fatalf("garbage selection response: %+v", resp)
	}
	if gameState(t, p, gameID).Clarification == nil {
		t.Fatalf("garbage selection discarded the clarification")
	}

	// Out-of-range selection: same treatment.
	resp = p.Execute(NewClarifyCommand(gameID, core.ClarifyRequest{Selection: "7"}))
	if resp.Success || resp.Error.Code != core.ErrAmbiguousMove {
		t.Fatalf("out-of-range selection response: %+v", resp)
	}
	if gameState(t, p, gameID).Clarification == nil {
		t.Fatalf("out-of-range selection discarded the clarification")
	}

	// "the second one" picks the h1 rook.
	resp = p.Execute(NewClarifyCommand(gameID, core.ClarifyRequest{Selection: "the second one"}))
	if !resp.Success {
		t.Fatalf("valid selection failed: %+v", resp.Error)
	}
	state = resp.Data.(core.GameResponse)
	if len(state.Moves) != 1 || state.Moves[0] != "h1d1" {
		t.Fatalf("moves = %v, want [h1d1]", state.Moves)
	}
	if state.Clarification != nil {
		t.Fatalf("clarification survived its resolution")
	}

	// Nothing pending anymore.
	resp = p.Execute(NewClarifyCommand(gameID, core.ClarifyRequest{Selection: "1"}))
	if resp.Success || resp.Error.Code != core.ErrNoClarification {
		t.Fatalf("clarify without pending state: %+v", resp)
	}
}

func TestNewCommandReplacesPendingClarification(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "1k6/8/8/8/8/8/4K3/R6R w - - 0 1")

	resp := p.Execute(NewVoiceMoveCommand(gameID, core.VoiceMoveRequest{Piece: "r", Target: "d1"}))
	if !resp.Success || !resp.Pending {
		t.Fatalf("ambiguous command response: %+v", resp)
	}

	// A fresh unambiguous command supersedes the prompt and executes.
	resp = p.Execute(NewVoiceMoveCommand(gameID, core.VoiceMoveRequest{Piece: "k", Target: "d2"}))
	if !resp.Success {
		t.Fatalf("superseding command failed: %+v", resp.Error)
	}
	state := resp.Data.(core.GameResponse)
	if state.Clarification != nil {
		t.Fatalf("stale clarification still pending")
	}
	if len(state.Moves) != 1 || state.Moves[0] != "e2d2" {
		t.Fatalf("moves = %v, want [e2d2]", state.Moves)
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")

	resp := p.Execute(NewMakeMoveCommand(gameID, core.MoveRequest{Source: "a1", Target: "a8"}))
	if !resp.Success {
		t.Fatalf("mating move failed: %+v", resp.Error)
	}

	state := gameState(t, p, gameID)
	if state.State != "white wins" {
		t.Fatalf("state = %q after back rank mate, want white wins", state.State)
	}
	if state.LastMove == nil || !state.LastMove.Check {
		t.Fatalf("mating move not flagged as check: %+v", state.LastMove)
	}

	// Terminal games accept no further moves.
	resp = p.Execute(NewMakeMoveCommand(gameID, core.MoveRequest{Source: "g8", Target: "h8"}))
	if resp.Success || resp.Error.Code != core.ErrGameOver {
		t.Fatalf("move accepted after game over: %+v", resp)
	}
}

func TestStalematePositionCreatedFinished(t *testing.T) {
	p := newTestProcessor(t)
	_, state := createGame(t, p, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	if state.State != "stalemate" {
		t.Fatalf("state = %q for a stalemate position, want stalemate", state.State)
	}
}

func TestUndoRestoresPosition(t *testing.T) {
	p := newTestProcessor(t)
	gameID, initial := createGame(t, p, "")

	p.Execute(NewMakeMoveCommand(gameID, core.MoveRequest{Source: "e2", Target: "e4"}))
	p.Execute(NewMakeMoveCommand(gameID, core.MoveRequest{Source: "e7", Target: "e5"}))

	resp := p.Execute(NewUndoMoveCommand(gameID, core.UndoRequest{Count: 2}))
	if !resp.Success {
		t.Fatalf("undo failed: %+v", resp.Error)
	}

	state := gameState(t, p, gameID)
	if state.FEN != initial.FEN {
		t.Fatalf("FEN after undo = %q, want %q", state.FEN, initial.FEN)
	}
	if len(state.Moves) != 0 {
		t.Fatalf("moves after undo = %v, want none", state.Moves)
	}

	resp = p.Execute(NewUndoMoveCommand(gameID, core.UndoRequest{Count: 1}))
	if resp.Success {
		t.Fatalf("undo past the initial position accepted")
	}
}

func TestDeleteGame(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "")

	resp := p.Execute(NewDeleteGameCommand(gameID))
	if !resp.Success {
		t.Fatalf("delete failed: %+v", resp.Error)
	}

	resp = p.Execute(NewGetGameCommand(gameID))
	if resp.Success || resp.Error.Code != core.ErrGameNotFound {
		t.Fatalf("deleted game still reachable: %+v", resp)
	}
}

func TestGetBoardRendersASCII(t *testing.T) {
	p := newTestProcessor(t)
	gameID, _ := createGame(t, p, "")

	resp := p.Execute(NewGetBoardCommand(gameID))
	if !resp.Success {
		t.Fatalf("get board failed: %+v", resp.Error)
	}
	board := resp.Data.(core.BoardResponse)
	if !strings.Contains(board.Board, "R") || !strings.Contains(board.Board, "k") {
		t.Fatalf("board rendering missing pieces:\n%s", board.Board)
	}
}
