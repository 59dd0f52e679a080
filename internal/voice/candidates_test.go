package voice

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mentrachess/internal/core"
	"mentrachess/internal/engine"
)

func mustPosition(t *testing.T, fen string) engine.Position {
	t.Helper()
	pos, err := engine.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return pos
}

func squares(t *testing.T, candidates []Candidate) []string {
	t.Helper()
	var out []string
	for _, c := range candidates {
		out = append(out, c.From.Algebraic())
	}
	return out
}

func target(t *testing.T, name string) core.Coordinate {
	t.Helper()
	c, ok := core.ToCoordinate(name)
	if !ok {
		t.Fatalf("bad square %q", name)
	}
	return c
}

func TestTwoRooksProduceTwoCandidates(t *testing.T) {
	pos := mustPosition(t, "1k6/8/8/8/8/8/4K3/R6R w - - 0 1")
	to := target(t, "d1")

	cands := FindCandidates(pos.Board, core.Rook, pos.Turn, to)
	legal := FilterLegal(pos.Board, cands, to, pos.Turn, pos.Castling)

	got := squares(t, legal)
	want := []string{"a1", "h1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestObstructedCandidateFilteredOut(t *testing.T) {
	// The king on e1 blocks the h1 rook's path to d1; only a1 survives
	// the legality filter even though both rooks share the rank.
	pos := mustPosition(t, "1k6/8/8/8/8/8/8/R3K2R w - - 0 1")
	to := target(t, "d1")

	cands := FindCandidates(pos.Board, core.Rook, pos.Turn, to)
	if len(cands) != 2 {
		t.Fatalf("pattern scan found %d candidates, want 2", len(cands))
	}

	legal := FilterLegal(pos.Board, cands, to, pos.Turn, pos.Castling)
	got := squares(t, legal)
	want := []string{"a1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legal candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestNoCandidateForUnreachableTarget(t *testing.T) {
	pos := mustPosition(t, engine.StartingFEN)

	// No knight reaches e5 from the starting position.
	cands := FindCandidates(pos.Board, core.Knight, pos.Turn, target(t, "e5"))
	if len(cands) != 0 {
		t.Fatalf("found %d knight candidates for e5, want 0", len(cands))
	}
}

func TestKnightCandidatesFromStart(t *testing.T) {
	pos := mustPosition(t, engine.StartingFEN)
	to := target(t, "f3")

	cands := FindCandidates(pos.Board, core.Knight, pos.Turn, to)
	legal := FilterLegal(pos.Board, cands, to, pos.Turn, pos.Castling)

	got := squares(t, legal)
	want := []string{"g1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestColorFilter(t *testing.T) {
	// Both sides have a rook on the d-file; only the mover's counts.
	pos := mustPosition(t, "k2r4/8/8/8/8/8/8/K2R4 w - - 0 1")
	to := target(t, "d5")

	cands := FindCandidates(pos.Board, core.Rook, core.ColorWhite, to)
	got := squares(t, cands)
	want := []string{"d1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestPawnCandidates(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		target string
		want   []string
	}{
		{
			name:   "single and double push share a file",
			fen:    engine.StartingFEN,
			target: "e4",
			want:   []string{"e2"},
		},
		{
			name:   "two pawns can capture the same square",
			fen:    "4k3/8/8/8/3p4/2P1P3/8/4K3 w - - 0 1",
			target: "d4",
			want:   []string{"c3", "e3"},
		},
		{
			name:   "diagonal without capture filtered",
			fen:    "4k3/8/8/8/8/2P1P3/8/4K3 w - - 0 1",
			target: "d4",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustPosition(t, tt.fen)
			to := target(t, tt.target)
			cands := FindCandidates(pos.Board, core.Pawn, pos.Turn, to)
			legal := FilterLegal(pos.Board, cands, to, pos.Turn, pos.Castling)
			got := squares(t, legal)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
