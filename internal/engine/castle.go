package engine

import (
	"strings"

	"mentrachess/internal/core"
)

// Castling geometry. White's home rank is row 7, black's row 0; the king
// starts on col 4 with rooks on cols 0 and 7.
const (
	kingHomeCol      = 4
	kingsideRookCol  = 7
	queensideRookCol = 0
)

func homeRow(color core.Color) int {
	if color == core.ColorWhite {
		return 7
	}
	return 0
}

func rightChar(color core.Color, side core.CastlingSide) byte {
	var ch byte = 'k'
	if side == core.Queenside {
		ch = 'q'
	}
	if color == core.ColorWhite {
		ch = ch - 'a' + 'A'
	}
	return ch
}

func hasRight(rights string, color core.Color, side core.CastlingSide) bool {
	return strings.IndexByte(rights, rightChar(color, side)) >= 0
}

func removeRight(rights string, color core.Color, side core.CastlingSide) string {
	out := strings.ReplaceAll(rights, string(rightChar(color, side)), "")
	if out == "" {
		return "-"
	}
	return out
}

// CanCastle returns the empty string when castling is legal for the given
// color and side, or the rejection reason. Checks in order: the right is
// still held, king and rook sit on their original squares, the squares
// between them are empty, the king is not currently in check, and no
// square the king transits (including the destination) is attacked.
func CanCastle(b Board, color core.Color, side core.CastlingSide, rights string) string {
	if !hasRight(rights, color, side) {
		return ReasonCastlingUnavailable
	}

	row := homeRow(color)
	rookCol := kingsideRookCol
	if side == core.Queenside {
		rookCol = queensideRookCol
	}

	king := b.PieceAt(core.Coordinate{Row: row, Col: kingHomeCol})
	rook := b.PieceAt(core.Coordinate{Row: row, Col: rookCol})
	if king.Type != core.King || king.Color != color ||
		rook.Type != core.Rook || rook.Color != color {
		return ReasonCastlingUnavailable
	}

	lo, hi := kingHomeCol, rookCol
	if lo > hi {
		lo, hi = hi, lo
	}
	for col := lo + 1; col < hi; col++ {
		if !b.PieceAt(core.Coordinate{Row: row, Col: col}).IsEmpty() {
			return ReasonCastlingBlocked
		}
	}

	opponent := core.OppositeColor(color)
	if IsSquareAttacked(b, core.Coordinate{Row: row, Col: kingHomeCol}, opponent) {
		return ReasonCastlingBlocked
	}

	step := 1
	if side == core.Queenside {
		step = -1
	}
	for _, col := range []int{kingHomeCol + step, kingHomeCol + 2*step} {
		if IsSquareAttacked(b, core.Coordinate{Row: row, Col: col}, opponent) {
			return ReasonCastlingBlocked
		}
	}

	return ""
}

// applyCastling returns a board copy with the compound move executed: the
// king shifts two columns toward the rook and the rook lands on the square
// beside the king's new position.
func applyCastling(b Board, color core.Color, side core.CastlingSide) Board {
	row := homeRow(color)
	kingTo, rookFrom, rookTo := castlingSquares(color, side)

	king := b.PieceAt(core.Coordinate{Row: row, Col: kingHomeCol})
	rook := b.PieceAt(rookFrom)
	b.setPiece(core.Coordinate{Row: row, Col: kingHomeCol}, core.Piece{})
	b.setPiece(rookFrom, core.Piece{})
	b.setPiece(kingTo, king)
	b.setPiece(rookTo, rook)
	return b
}

func castlingSquares(color core.Color, side core.CastlingSide) (kingTo, rookFrom, rookTo core.Coordinate) {
	row := homeRow(color)
	if side == core.Kingside {
		return core.Coordinate{Row: row, Col: 6},
			core.Coordinate{Row: row, Col: kingsideRookCol},
			core.Coordinate{Row: row, Col: 5}
	}
	return core.Coordinate{Row: row, Col: 2},
		core.Coordinate{Row: row, Col: queensideRookCol},
		core.Coordinate{Row: row, Col: 3}
}

// updateCastlingRights applies rights revocation after a move. Rights only
// ever shrink: a king move clears both of its color's rights, a rook move
// off its original square clears that side, and capturing a rook clears
// the captured side's corresponding right.
//
// A captured rook is classified by file alone (h-file kingside, a-file
// queenside), which over-revokes for a rook that had already left its
// original square earlier in the game and come back to that file.
func updateCastlingRights(rights string, piece core.Piece, from, to core.Coordinate, captured core.Piece) string {
	if rights == "-" || rights == "" {
		return "-"
	}

	switch piece.Type {
	case core.King:
		rights = removeRight(rights, piece.Color, core.Kingside)
		rights = removeRight(rights, piece.Color, core.Queenside)
	case core.Rook:
		if from.Row == homeRow(piece.Color) {
			switch from.Col {
			case kingsideRookCol:
				rights = removeRight(rights, piece.Color, core.Kingside)
			case queensideRookCol:
				rights = removeRight(rights, piece.Color, core.Queenside)
			}
		}
	}

	if captured.Type == core.Rook {
		switch to.Col {
		case kingsideRookCol:
			rights = removeRight(rights, captured.Color, core.Kingside)
		case queensideRookCol:
			rights = removeRight(rights, captured.Color, core.Queenside)
		}
	}

	return rights
}
