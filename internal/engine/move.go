package engine

import (
	"time"

	"mentrachess/internal/core"
)

// Move records one executed ply.
type Move struct {
	Piece        core.Piece
	From         core.Coordinate
	To           core.Coordinate
	Captured     core.Piece     // zero value when nothing was captured
	Promotion    core.PieceType // NoPiece, or Queen (the only promotion produced)
	Notation     string         // coordinate notation: e2e4, e1g1, e7e8q
	IsCastling   bool
	CastlingSide core.CastlingSide
	Timestamp    time.Time
}

// ApplyMove validates the move against the position and, when legal,
// executes it: board update, capture, automatic queen promotion, castling
// compound relocation, rights revocation, clocks, and turn flip. It
// returns the new position, the move record, and the verdict. On a
// rejected move the input position is returned unchanged.
func ApplyMove(pos Position, from, to core.Coordinate) (Position, Move, MoveVerdict) {
	verdict := ValidateMove(pos.Board, from, to, pos.Turn, pos.Castling)
	if !verdict.Valid {
		return pos, Move{}, verdict
	}

	piece := pos.Board.PieceAt(from)
	captured := pos.Board.PieceAt(to)

	move := Move{
		Piece:        piece,
		From:         from,
		To:           to,
		Captured:     captured,
		IsCastling:   verdict.IsCastling,
		CastlingSide: verdict.CastlingSide,
		Timestamp:    time.Now().UTC(),
	}

	if verdict.IsCastling {
		pos.Board = applyCastling(pos.Board, pos.Turn, verdict.CastlingSide)
	} else {
		pos.Board = movePiece(pos.Board, from, to)
		if piece.Type == core.Pawn && (to.Row == 0 || to.Row == 7) {
			move.Promotion = core.Queen
		}
	}

	move.Notation = coordinateNotation(move)

	pos.Castling = updateCastlingRights(pos.Castling, piece, from, to, captured)

	// Halfmove clock resets on pawn moves and captures.
	if piece.Type == core.Pawn || !captured.IsEmpty() {
		pos.Halfmove = 0
	} else {
		pos.Halfmove++
	}
	if pos.Turn == core.ColorBlack {
		pos.Fullmove++
	}

	// En passant targets are tracked for FEN compatibility but never
	// produced; double pushes do not arm one.
	pos.EnPassant = "-"

	pos.Turn = core.OppositeColor(pos.Turn)

	return pos, move, verdict
}

func coordinateNotation(m Move) string {
	n := m.From.Algebraic() + m.To.Algebraic()
	if m.Promotion != core.NoPiece {
		n += "q"
	}
	return n
}
