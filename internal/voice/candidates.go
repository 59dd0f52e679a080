// Package voice narrows ambiguous spoken move commands ("knight to f3")
// down to a single origin square, or produces the candidate list a caller
// must clarify. Candidate generation is deliberately two-pass: a cheap
// pattern-only scan builds a permissive superset, then the legality engine
// filters it exactly.
package voice

import (
	"mentrachess/internal/core"
	"mentrachess/internal/engine"
)

// Candidate is a piece of the requested type and color whose movement
// pattern could reach the target, before obstruction and check are
// considered.
type Candidate struct {
	From  core.Coordinate
	Piece core.Piece
}

// FindCandidates scans the board for color's pieces of the given type
// whose geometry alone reaches target. Obstruction and check are ignored
// here; FilterLegal applies the exact rules.
func FindCandidates(b engine.Board, pieceType core.PieceType, color core.Color, target core.Coordinate) []Candidate {
	var out []Candidate
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := core.Coordinate{Row: r, Col: c}
			p := b.PieceAt(from)
			if p.Type != pieceType || p.Color != color || from == target {
				continue
			}
			if patternReaches(pieceType, color, from, target) {
				out = append(out, Candidate{From: from, Piece: p})
			}
		}
	}
	return out
}

// FilterLegal keeps the candidates whose move actually validates.
func FilterLegal(b engine.Board, candidates []Candidate, target core.Coordinate, mover core.Color, rights string) []Candidate {
	var out []Candidate
	for _, cand := range candidates {
		if engine.ValidateMove(b, cand.From, target, mover, rights).Valid {
			out = append(out, cand)
		}
	}
	return out
}

// patternReaches is the geometry-only predicate. Pawns are the permissive
// union of push, double push from the starting rank, and diagonal step;
// the legality filter sorts out which of those actually applies.
func patternReaches(pieceType core.PieceType, color core.Color, from, to core.Coordinate) bool {
	dr := to.Row - from.Row
	dc := to.Col - from.Col

	switch pieceType {
	case core.Pawn:
		dir := -1
		startRow := 6
		if color == core.ColorBlack {
			dir = 1
			startRow = 1
		}
		if dc == 0 && dr == dir {
			return true
		}
		if dc == 0 && dr == 2*dir && from.Row == startRow {
			return true
		}
		return abs(dc) == 1 && dr == dir
	case core.Knight:
		return (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case core.Bishop:
		return abs(dr) == abs(dc)
	case core.Rook:
		return (dr == 0) != (dc == 0)
	case core.Queen:
		return abs(dr) == abs(dc) || (dr == 0) != (dc == 0)
	case core.King:
		return abs(dr) <= 1 && abs(dc) <= 1 && (dr != 0 || dc != 0)
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
