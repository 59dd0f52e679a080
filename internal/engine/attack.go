package engine

import "mentrachess/internal/core"

// Attack-pattern queries. These mirror the movement rules but skip the
// self-check simulation, which makes them the cheap primitive that check
// detection and castling transit tests share. "Can this square be hit"
// never needs to know whether the attacker's own king is safe.

var knightOffsets = [8][2]int{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

var rookDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
var bishopDirs = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// IsSquareAttacked reports whether any piece of byColor attacks the
// square. The square itself may be empty or occupied by either side.
func IsSquareAttacked(b Board, sq core.Coordinate, byColor core.Color) bool {
	if !sq.InRange() {
		return false
	}

	// Pawn attacks: a pawn of byColor one row behind (from its own point
	// of view) on an adjacent file hits sq.
	pawnRow := sq.Row + 1
	if byColor == core.ColorBlack {
		pawnRow = sq.Row - 1
	}
	for _, dc := range []int{-1, 1} {
		p := b.PieceAt(core.Coordinate{Row: pawnRow, Col: sq.Col + dc})
		if p.Type == core.Pawn && p.Color == byColor {
			return true
		}
	}

	for _, off := range knightOffsets {
		p := b.PieceAt(core.Coordinate{Row: sq.Row + off[0], Col: sq.Col + off[1]})
		if p.Type == core.Knight && p.Color == byColor {
			return true
		}
	}

	for _, dir := range rookDirs {
		if p, ok := firstPieceAlong(b, sq, dir[0], dir[1]); ok && p.Color == byColor {
			if p.Type == core.Rook || p.Type == core.Queen {
				return true
			}
		}
	}
	for _, dir := range bishopDirs {
		if p, ok := firstPieceAlong(b, sq, dir[0], dir[1]); ok && p.Color == byColor {
			if p.Type == core.Bishop || p.Type == core.Queen {
				return true
			}
		}
	}

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			p := b.PieceAt(core.Coordinate{Row: sq.Row + dr, Col: sq.Col + dc})
			if p.Type == core.King && p.Color == byColor {
				return true
			}
		}
	}

	return false
}

// firstPieceAlong walks from sq in the given direction and returns the
// first occupied square's piece.
func firstPieceAlong(b Board, sq core.Coordinate, dr, dc int) (core.Piece, bool) {
	cur := core.Coordinate{Row: sq.Row + dr, Col: sq.Col + dc}
	for cur.InRange() {
		p := b.PieceAt(cur)
		if !p.IsEmpty() {
			return p, true
		}
		cur.Row += dr
		cur.Col += dc
	}
	return core.Piece{}, false
}

// IsInCheck reports whether color's king is attacked.
func IsInCheck(b Board, color core.Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, core.OppositeColor(color))
}
