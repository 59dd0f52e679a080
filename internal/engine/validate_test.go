package engine

import (
	"testing"

	"mentrachess/internal/core"
)

func TestValidateMoveRejections(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		from   string
		to     string
		reason string
	}{
		{
			name:   "empty source",
			fen:    StartingFEN,
			from:   "e4",
			to:     "e5",
			reason: ReasonEmptySource,
		},
		{
			name:   "opponent piece",
			fen:    StartingFEN,
			from:   "e7",
			to:     "e5",
			reason: ReasonWrongColor,
		},
		{
			name:   "self capture",
			fen:    StartingFEN,
			from:   "a1",
			to:     "a2",
			reason: ReasonSelfCapture,
		},
		{
			name:   "knight bad geometry",
			fen:    StartingFEN,
			from:   "g1",
			to:     "g3",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "rook through pawn",
			fen:    StartingFEN,
			from:   "a1",
			to:     "a4",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "bishop through pawn",
			fen:    StartingFEN,
			from:   "c1",
			to:     "g5",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "pawn diagonal onto empty square",
			fen:    StartingFEN,
			from:   "e2",
			to:     "d3",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "pawn triple push",
			fen:    StartingFEN,
			from:   "e2",
			to:     "e5",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "pawn double push off starting rank",
			fen:    "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1",
			from:   "e3",
			to:     "e5",
			reason: ReasonIllegalPattern,
		},
		{
			name:   "pawn push blocked",
			fen:    "4k3/8/8/8/4p3/4P3/8/4K3 w - - 0 1",
			from:   "e3",
			to:     "e4",
			reason: ReasonIllegalPattern,
		},
		{
			// Bishop on d2 shields the king from the b4 bishop; moving
			// it away exposes e1.
			name:   "pinned piece cannot move",
			fen:    "4k3/8/8/8/1b6/8/3B4/4K3 w - - 0 1",
			from:   "d2",
			to:     "h6",
			reason: ReasonSelfCheck,
		},
		{
			name:   "king cannot step into attack",
			fen:    "4k3/8/8/8/8/8/r7/4K3 w - - 0 1",
			from:   "e1",
			to:     "e2",
			reason: ReasonSelfCheck,
		},
		{
			name:   "must resolve existing check",
			fen:    "4k3/8/8/8/8/8/4r3/4K2N w - - 0 1",
			from:   "h1",
			to:     "g3",
			reason: ReasonSelfCheck,
		},
		{
			name:   "same square",
			fen:    StartingFEN,
			from:   "e2",
			to:     "e2",
			reason: ReasonInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustPosition(t, tt.fen)
			verdict := ValidateMove(pos.Board, sq(t, tt.from), sq(t, tt.to), pos.Turn, pos.Castling)
			if verdict.Valid {
				t.Fatalf("move %s-%s accepted, want rejection %q", tt.from, tt.to, tt.reason)
			}
			if verdict.Reason != tt.reason {
				t.Fatalf("reason = %q, want %q", verdict.Reason, tt.reason)
			}
		})
	}
}

func TestValidateMoveAccepts(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from string
		to   string
	}{
		{"pawn single push", StartingFEN, "e2", "e3"},
		{"pawn double push", StartingFEN, "e2", "e4"},
		{"knight over pieces", StartingFEN, "g1", "f3"},
		{"pawn diagonal capture", "4k3/8/8/8/3p4/4P3/8/4K3 w - - 0 1", "e3", "d4"},
		{"rook along open file", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1", "a7"},
		{"queen along diagonal", "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1", "a1", "f6"},
		{"king single step", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", "e1", "d2"},
		{"capture the checking piece", "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1", "e1", "e2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustPosition(t, tt.fen)
			verdict := ValidateMove(pos.Board, sq(t, tt.from), sq(t, tt.to), pos.Turn, pos.Castling)
			if !verdict.Valid {
				t.Fatalf("move %s-%s rejected: %s", tt.from, tt.to, verdict.Reason)
			}
		})
	}
}

// Any position produced by ApplyMove must leave the mover's own king out
// of check.
func TestApplyMoveNeverLeavesOwnKingInCheck(t *testing.T) {
	fens := []string{
		StartingFEN,
		"4k3/8/8/8/1b6/8/3B4/4K3 w - - 0 1",
		"r3k2r/pppq1ppp/8/8/8/8/PPPQ1PPP/R3K2R w KQkq - 0 10",
		"4k3/8/8/8/8/8/4r3/4K2N w - - 0 1",
	}

	for _, fen := range fens {
		pos := mustPosition(t, fen)
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				from := core.Coordinate{Row: r, Col: c}
				if p := pos.Board.PieceAt(from); p.IsEmpty() || p.Color != pos.Turn {
					continue
				}
				for tr := 0; tr < 8; tr++ {
					for tc := 0; tc < 8; tc++ {
						to := core.Coordinate{Row: tr, Col: tc}
						newPos, _, verdict := ApplyMove(pos, from, to)
						if !verdict.Valid {
							continue
						}
						if IsInCheck(newPos.Board, pos.Turn) {
							t.Fatalf("fen %q: legal move %s-%s leaves own king in check",
								fen, from.Algebraic(), to.Algebraic())
						}
					}
				}
			}
		}
	}
}

func TestApplyMoveCheckFlag(t *testing.T) {
	// Rook slides to the e-file, giving check to the e8 king.
	pos := mustPosition(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	newPos, _, verdict := ApplyMove(pos, sq(t, "a1"), sq(t, "a8"))
	if !verdict.Valid {
		t.Fatalf("rook move rejected: %s", verdict.Reason)
	}
	if !verdict.OpponentInCheck {
		t.Fatalf("expected check flag after Ra8")
	}
	if !IsInCheck(newPos.Board, core.ColorBlack) {
		t.Fatalf("resulting position should have black in check")
	}
}

func TestApplyMovePromotesToQueen(t *testing.T) {
	pos := mustPosition(t, "8/P3k3/8/8/8/8/8/4K3 w - - 0 1")
	newPos, move, verdict := ApplyMove(pos, sq(t, "a7"), sq(t, "a8"))
	if !verdict.Valid {
		t.Fatalf("promotion push rejected: %s", verdict.Reason)
	}
	if move.Promotion != core.Queen {
		t.Fatalf("promotion = %v, want queen", move.Promotion)
	}
	if move.Notation != "a7a8q" {
		t.Fatalf("notation = %q, want a7a8q", move.Notation)
	}
	if p := newPos.Board.PieceAt(sq(t, "a8")); p.Type != core.Queen || p.Color != core.ColorWhite {
		t.Fatalf("a8 holds %v, want white queen", p)
	}
}

func TestApplyMoveClocks(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/8/8/4P3/RN2K3 w - - 5 10")

	// Knight move: halfmove increments, fullmove unchanged on white's turn.
	afterKnight, _, verdict := ApplyMove(pos, sq(t, "b1"), sq(t, "c3"))
	if !verdict.Valid {
		t.Fatalf("knight move rejected: %s", verdict.Reason)
	}
	if afterKnight.Halfmove != 6 {
		t.Fatalf("halfmove = %d, want 6", afterKnight.Halfmove)
	}
	if afterKnight.Fullmove != 10 {
		t.Fatalf("fullmove = %d, want 10", afterKnight.Fullmove)
	}

	// Pawn move resets the halfmove clock.
	afterPawn, _, verdict := ApplyMove(pos, sq(t, "e2"), sq(t, "e4"))
	if !verdict.Valid {
		t.Fatalf("pawn move rejected: %s", verdict.Reason)
	}
	if afterPawn.Halfmove != 0 {
		t.Fatalf("halfmove = %d after pawn move, want 0", afterPawn.Halfmove)
	}
	if afterPawn.EnPassant != "-" {
		t.Fatalf("double push armed en passant target %q", afterPawn.EnPassant)
	}

	// Black's reply increments the fullmove number.
	afterBlack, _, verdict := ApplyMove(afterPawn, sq(t, "e8"), sq(t, "d7"))
	if !verdict.Valid {
		t.Fatalf("king move rejected: %s", verdict.Reason)
	}
	if afterBlack.Fullmove != 11 {
		t.Fatalf("fullmove = %d after black's move, want 11", afterBlack.Fullmove)
	}
}
