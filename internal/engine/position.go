package engine

import "mentrachess/internal/core"

// Position is the full game-state snapshot the rules operate on: board,
// side to move, castling rights, and the FEN counters. EnPassant is
// carried for FEN compatibility but never populated by move execution;
// en passant capture is out of scope.
type Position struct {
	Board     Board
	Turn      core.Color
	Castling  string // subset of "KQkq", or "-"
	EnPassant string // target square or "-"; execution never sets one
	Halfmove  int
	Fullmove  int
}

// StartingPosition returns the standard initial position.
func StartingPosition() Position {
	pos, _ := ParseFEN(StartingFEN)
	return pos
}
