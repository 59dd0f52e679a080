package engine

import "mentrachess/internal/core"

// GameEnd is the result of CheckGameEnd.
type GameEnd struct {
	IsOver bool
	Result core.State
	Reason string // "checkmate" or "stalemate"
}

// HasLegalMoves reports whether color has at least one legal move. It is
// deliberately brute force: every own piece against all 64 targets through
// ValidateMove. The most expensive query in the engine, but it runs once
// per ply.
func HasLegalMoves(b Board, color core.Color, rights string) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := core.Coordinate{Row: r, Col: c}
			p := b.PieceAt(from)
			if p.IsEmpty() || p.Color != color {
				continue
			}
			for tr := 0; tr < 8; tr++ {
				for tc := 0; tc < 8; tc++ {
					to := core.Coordinate{Row: tr, Col: tc}
					if from == to {
						continue
					}
					if ValidateMove(b, from, to, color, rights).Valid {
						return true
					}
				}
			}
		}
	}
	return false
}

// CheckGameEnd classifies the position for the side to move after
// lastMoveBy has played. Exactly one of ongoing, checkmate, or stalemate
// holds; no other draw condition is evaluated.
func CheckGameEnd(pos Position, lastMoveBy core.Color) GameEnd {
	toMove := pos.Turn
	inCheck := IsInCheck(pos.Board, toMove)
	if HasLegalMoves(pos.Board, toMove, pos.Castling) {
		return GameEnd{}
	}

	if inCheck {
		result := core.StateBlackWins
		if lastMoveBy == core.ColorWhite {
			result = core.StateWhiteWins
		}
		return GameEnd{IsOver: true, Result: result, Reason: "checkmate"}
	}
	return GameEnd{IsOver: true, Result: core.StateStalemate, Reason: "stalemate"}
}
