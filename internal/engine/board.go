// Package engine implements the chess rules: board representation, move
// legality, check and game-end detection, castling, and FEN serialization.
// It is a pure computation over value-type snapshots; every operation takes
// a position and returns a new one. Scheduling and per-game serialization
// belong to the session layer.
package engine

import (
	"fmt"
	"strings"

	"mentrachess/internal/core"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board is the 8x8 grid, row 0 = rank 8, col 0 = file a. It is a value
// type: assignment copies, so callers never share mutable state with the
// legality functions.
type Board [8][8]core.Piece

// PieceAt returns the piece at c, or the empty piece for out-of-range
// coordinates. The defensive default keeps sliding-move scans near the
// edge free of bounds checks.
func (b Board) PieceAt(c core.Coordinate) core.Piece {
	if !c.InRange() {
		return core.Piece{}
	}
	return b[c.Row][c.Col]
}

func (b *Board) setPiece(c core.Coordinate, p core.Piece) {
	if c.InRange() {
		b[c.Row][c.Col] = p
	}
}

// IsOwnPiece reports whether the square holds a piece of the given color.
func (b Board) IsOwnPiece(c core.Coordinate, color core.Color) bool {
	p := b.PieceAt(c)
	return !p.IsEmpty() && p.Color == color
}

// FindKing locates the king of the given color. ok is false only for
// malformed positions; a well-formed game always has both kings.
func (b Board) FindKing(color core.Color) (core.Coordinate, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b[r][c]
			if p.Type == core.King && p.Color == color {
				return core.Coordinate{Row: r, Col: c}, true
			}
		}
	}
	return core.Coordinate{}, false
}

// ToASCII creates an ASCII representation of the board
func (b Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for c := 0; c < 8; c++ {
			p := b[r][c]
			if p.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", p.Char()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
