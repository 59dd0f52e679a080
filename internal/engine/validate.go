package engine

import "mentrachess/internal/core"

// Rejection taxonomy. These are data returned to callers, who are expected
// to recover (typically by re-prompting); none of them is a Go error.
const (
	ReasonInvalidCoordinates  = "invalid coordinates"
	ReasonEmptySource         = "no piece at source square"
	ReasonWrongColor          = "piece does not belong to player"
	ReasonSelfCapture         = "cannot capture own piece"
	ReasonIllegalPattern      = "invalid move for piece type"
	ReasonSelfCheck           = "move would result in check"
	ReasonCastlingUnavailable = "castling right not available"
	ReasonCastlingBlocked     = "castling path blocked or attacked"
)

// MoveVerdict is the outcome of ValidateMove.
type MoveVerdict struct {
	Valid           bool
	Reason          string // taxonomy member, empty when Valid
	OpponentInCheck bool   // the move gives check; informational
	IsCastling      bool
	CastlingSide    core.CastlingSide
}

func reject(reason string) MoveVerdict {
	return MoveVerdict{Reason: reason}
}

// ValidateMove decides whether moving the piece on from to to is legal for
// mover under the given castling rights. Each step short-circuits:
// coordinates, source ownership, target occupancy, the piece's movement
// pattern (a two-column king move is routed to the castling rules), then
// the no-self-check simulation, applied uniformly to every move type.
// On success the verdict also reports whether the opponent's king is in
// check in the resulting position.
func ValidateMove(b Board, from, to core.Coordinate, mover core.Color, rights string) MoveVerdict {
	if !from.InRange() || !to.InRange() || from == to {
		return reject(ReasonInvalidCoordinates)
	}

	piece := b.PieceAt(from)
	if piece.IsEmpty() {
		return reject(ReasonEmptySource)
	}
	if piece.Color != mover {
		return reject(ReasonWrongColor)
	}

	target := b.PieceAt(to)
	if !target.IsEmpty() && target.Color == mover {
		return reject(ReasonSelfCapture)
	}

	var sim Board
	verdict := MoveVerdict{Valid: true}

	if piece.Type == core.King && from.Row == to.Row && abs(to.Col-from.Col) == 2 {
		side := core.Queenside
		if to.Col > from.Col {
			side = core.Kingside
		}
		if reason := CanCastle(b, mover, side, rights); reason != "" {
			return reject(reason)
		}
		sim = applyCastling(b, mover, side)
		verdict.IsCastling = true
		verdict.CastlingSide = side
	} else {
		if !pseudoLegal(b, piece, from, to) {
			return reject(ReasonIllegalPattern)
		}
		sim = movePiece(b, from, to)
	}

	if IsInCheck(sim, mover) {
		return reject(ReasonSelfCheck)
	}
	verdict.OpponentInCheck = IsInCheck(sim, core.OppositeColor(mover))

	return verdict
}

// pseudoLegal checks the piece's movement geometry and obstruction, but
// not check. Target-square color conflicts are already ruled out.
func pseudoLegal(b Board, piece core.Piece, from, to core.Coordinate) bool {
	dr := to.Row - from.Row
	dc := to.Col - from.Col

	switch piece.Type {
	case core.Pawn:
		return pawnPseudoLegal(b, piece.Color, from, to)
	case core.Knight:
		return (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case core.Bishop:
		return abs(dr) == abs(dc) && pathClear(b, from, to)
	case core.Rook:
		return (dr == 0) != (dc == 0) && pathClear(b, from, to)
	case core.Queen:
		if abs(dr) == abs(dc) || (dr == 0) != (dc == 0) {
			return pathClear(b, from, to)
		}
		return false
	case core.King:
		return abs(dr) <= 1 && abs(dc) <= 1
	}
	return false
}

func pawnPseudoLegal(b Board, color core.Color, from, to core.Coordinate) bool {
	dir := -1 // white advances toward row 0 (rank 8)
	startRow := 6
	if color == core.ColorBlack {
		dir = 1
		startRow = 1
	}

	dr := to.Row - from.Row
	dc := to.Col - from.Col
	target := b.PieceAt(to)

	// Single push onto an empty square.
	if dc == 0 && dr == dir {
		return target.IsEmpty()
	}
	// Double push from the starting rank through two empty squares.
	if dc == 0 && dr == 2*dir && from.Row == startRow {
		between := core.Coordinate{Row: from.Row + dir, Col: from.Col}
		return b.PieceAt(between).IsEmpty() && target.IsEmpty()
	}
	// Diagonal capture only; a diagonal step onto an empty square fails.
	if abs(dc) == 1 && dr == dir {
		return !target.IsEmpty() && target.Color != color
	}
	return false
}

// pathClear reports whether all squares strictly between from and to are
// empty. from and to must be aligned on a rank, file, or diagonal.
func pathClear(b Board, from, to core.Coordinate) bool {
	dr := sign(to.Row - from.Row)
	dc := sign(to.Col - from.Col)
	cur := core.Coordinate{Row: from.Row + dr, Col: from.Col + dc}
	for cur != to {
		if !b.PieceAt(cur).IsEmpty() {
			return false
		}
		cur.Row += dr
		cur.Col += dc
	}
	return true
}

// movePiece returns a copy of the board with the piece moved and pawn
// promotion applied. Promotion is always to queen.
func movePiece(b Board, from, to core.Coordinate) Board {
	piece := b.PieceAt(from)
	b.setPiece(from, core.Piece{})
	if piece.Type == core.Pawn && (to.Row == 0 || to.Row == 7) {
		piece.Type = core.Queen
	}
	b.setPiece(to, piece)
	return b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
