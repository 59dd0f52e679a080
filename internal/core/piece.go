package core

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	}
	return "-"
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

type PieceType byte

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// Piece is the tagged (type, color) pair used internally. The empty square
// is the zero value. Single-character case-as-color codes only exist at the
// FEN/API boundary, via Char and PieceFromChar.
type Piece struct {
	Type  PieceType
	Color Color
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

var typeChars = map[PieceType]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

// Char returns the FEN character for the piece, uppercase for white.
// Empty squares return 0.
func (p Piece) Char() byte {
	ch, ok := typeChars[p.Type]
	if !ok {
		return 0
	}
	if p.Color == ColorWhite {
		return ch - 'a' + 'A'
	}
	return ch
}

// PieceFromChar decodes a single FEN-style character. Case determines color,
// the case-insensitive letter determines type. Unknown characters decode to
// the empty piece.
func PieceFromChar(ch byte) Piece {
	color := ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		color = ColorWhite
		ch = ch - 'A' + 'a'
	}
	for t, c := range typeChars {
		if c == ch {
			return Piece{Type: t, Color: color}
		}
	}
	return Piece{}
}

// PieceTypeFromChar decodes a case-insensitive piece letter without color.
func PieceTypeFromChar(ch byte) PieceType {
	return PieceFromChar(ch).Type
}

type CastlingSide byte

const (
	Kingside CastlingSide = iota + 1
	Queenside
)

func (s CastlingSide) String() string {
	if s == Kingside {
		return "kingside"
	}
	return "queenside"
}
