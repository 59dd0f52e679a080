package engine

import (
	"testing"

	"mentrachess/internal/core"
)

func playMoves(t *testing.T, pos Position, moves ...string) Position {
	t.Helper()
	for _, m := range moves {
		if len(m) != 4 {
			t.Fatalf("bad move %q", m)
		}
		var verdict MoveVerdict
		pos, _, verdict = ApplyMove(pos, sq(t, m[:2]), sq(t, m[2:]))
		if !verdict.Valid {
			t.Fatalf("move %s rejected: %s", m, verdict.Reason)
		}
	}
	return pos
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	pos := playMoves(t, StartingPosition(),
		"f2f3", "e7e5",
		"g2g4", "d8h4",
	)

	if !IsInCheck(pos.Board, core.ColorWhite) {
		t.Fatalf("white should be in check after Qh4")
	}

	end := CheckGameEnd(pos, core.ColorBlack)
	if !end.IsOver {
		t.Fatalf("fool's mate not detected as game over")
	}
	if end.Result != core.StateBlackWins {
		t.Fatalf("result = %v, want black wins", end.Result)
	}
	if end.Reason != "checkmate" {
		t.Fatalf("reason = %q, want checkmate", end.Reason)
	}
}

func TestStalemateDetection(t *testing.T) {
	// Black king on h8 has no moves but is not in check.
	pos := mustPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	if IsInCheck(pos.Board, core.ColorBlack) {
		t.Fatalf("position should not be check")
	}
	if HasLegalMoves(pos.Board, core.ColorBlack, pos.Castling) {
		t.Fatalf("black should have no legal moves")
	}

	end := CheckGameEnd(pos, core.ColorWhite)
	if !end.IsOver {
		t.Fatalf("stalemate not detected")
	}
	if end.Result != core.StateStalemate {
		t.Fatalf("result = %v, want stalemate", end.Result)
	}
	if end.Reason != "stalemate" {
		t.Fatalf("reason = %q, want stalemate", end.Reason)
	}
}

func TestBackRankMate(t *testing.T) {
	// Rook delivers mate on the back rank; the pawns block every escape.
	pos := mustPosition(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	pos = playMoves(t, pos, "a1a8")

	end := CheckGameEnd(pos, core.ColorWhite)
	if !end.IsOver || end.Result != core.StateWhiteWins {
		t.Fatalf("back rank mate not detected: %+v", end)
	}
}

func TestCheckIsNotGameOver(t *testing.T) {
	// Check that can be blocked or escaped keeps the game ongoing.
	pos := mustPosition(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	pos = playMoves(t, pos, "a1a8")

	end := CheckGameEnd(pos, core.ColorWhite)
	if end.IsOver {
		t.Fatalf("escapable check classified as game over: %+v", end)
	}
	if !IsInCheck(pos.Board, core.ColorBlack) {
		t.Fatalf("black should be in check")
	}
	if !HasLegalMoves(pos.Board, core.ColorBlack, pos.Castling) {
		t.Fatalf("black should have escape moves")
	}
}

func TestHasLegalMovesOngoing(t *testing.T) {
	pos := StartingPosition()
	if !HasLegalMoves(pos.Board, core.ColorWhite, pos.Castling) {
		t.Fatalf("white has no moves in the starting position")
	}
	if end := CheckGameEnd(pos, core.ColorBlack); end.IsOver {
		t.Fatalf("starting position classified as over: %+v", end)
	}
}
