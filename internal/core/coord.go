package core

// Coordinate addresses a board square as (row, col), each in [0,7].
// Row 0 is rank 8 and col 0 is file a, so the board reads top-down the way
// FEN does. Algebraic conversion depends on this orientation.
type Coordinate struct {
	Row int
	Col int
}

// InRange reports whether the coordinate addresses a real square.
func (c Coordinate) InRange() bool {
	return c.Row >= 0 && c.Row < 8 && c.Col >= 0 && c.Col < 8
}

// Algebraic returns the square name ("e4"). Out-of-range coordinates
// return the empty string.
func (c Coordinate) Algebraic() string {
	if !c.InRange() {
		return ""
	}
	return string([]byte{byte('a' + c.Col), byte('8' - c.Row)})
}

// ToCoordinate parses an algebraic square name. Invalid input (wrong
// length, file outside a-h, rank outside 1-8) returns ok=false, never an
// error or panic.
func ToCoordinate(square string) (Coordinate, bool) {
	if len(square) != 2 {
		return Coordinate{}, false
	}
	file := square[0]
	rank := square[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Coordinate{}, false
	}
	return Coordinate{Row: int('8' - rank), Col: int(file - 'a')}, true
}
