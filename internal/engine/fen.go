package engine

import (
	"fmt"
	"strings"

	"mentrachess/internal/core"
)

// ToFEN serializes the position as the standard six space-separated
// fields: piece placement ranks 8 to 1, active color, castling rights,
// en passant target, halfmove clock, fullmove number.
func ToFEN(pos Position) string {
	var sb strings.Builder

	for r := 0; r < 8; r++ {
		empty := 0
		for c := 0; c < 8; c++ {
			p := pos.Board[r][c]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r < 7 {
			sb.WriteByte('/')
		}
	}

	castling := pos.Castling
	if castling == "" {
		castling = "-"
	}
	enPassant := pos.EnPassant
	if enPassant == "" {
		enPassant = "-"
	}

	sb.WriteString(fmt.Sprintf(" %s %s %s %d %d",
		pos.Turn, castling, enPassant, pos.Halfmove, pos.Fullmove))

	return sb.String()
}

// ParseFEN parses a six-field FEN string into a Position.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("invalid FEN: expected 6 parts, got %d", len(parts))
	}

	var pos Position

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r := 0; r < 8; r++ {
		col := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			if col >= 8 {
				return Position{}, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			p := core.PieceFromChar(ch)
			if p.IsEmpty() {
				return Position{}, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			pos.Board[r][col] = p
			col++
		}
		if col != 8 {
			return Position{}, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, col)
		}
	}

	switch parts[1] {
	case "w":
		pos.Turn = core.ColorWhite
	case "b":
		pos.Turn = core.ColorBlack
	default:
		return Position{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if err := validateCastlingField(parts[2]); err != nil {
		return Position{}, err
	}
	pos.Castling = parts[2]
	pos.EnPassant = parts[3]

	if _, err := fmt.Sscanf(parts[4], "%d", &pos.Halfmove); err != nil || pos.Halfmove < 0 {
		return Position{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if _, err := fmt.Sscanf(parts[5], "%d", &pos.Fullmove); err != nil || pos.Fullmove < 1 {
		return Position{}, fmt.Errorf("invalid FEN: fullmove counter")
	}

	return pos, nil
}

func validateCastlingField(field string) error {
	if field == "-" {
		return nil
	}
	if field == "" || len(field) > 4 {
		return fmt.Errorf("invalid FEN: castling field")
	}
	seen := map[byte]bool{}
	for i := 0; i < len(field); i++ {
		ch := field[i]
		if !strings.ContainsRune("KQkq", rune(ch)) || seen[ch] {
			return fmt.Errorf("invalid FEN: castling field")
		}
		seen[ch] = true
	}
	return nil
}
