package core

// Request types

type CreateGameRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
	FEN   string       `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

// MoveRequest is the direct path: explicit source and target squares, as
// produced by the move parser for fully specified commands, by the network
// relay, or by the engine adapter for computer moves ("cccc" requests one).
type MoveRequest struct {
	Source string `json:"source" validate:"required,min=2,max=4"`
	Target string `json:"target,omitempty" validate:"omitempty,len=2"`
}

// VoiceMoveRequest is the ambiguous path: the parser collaborator names a
// piece type and a destination, but no origin square.
type VoiceMoveRequest struct {
	Piece  string `json:"piece" validate:"required,len=1"` // case-insensitive FEN letter
	Target string `json:"target" validate:"required,len=2"`
}

// ClarifyRequest resolves a pending clarification with the raw spoken
// selection ("2", "two", "number 2").
type ClarifyRequest struct {
	Selection string `json:"selection" validate:"required,max=40"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID        string                 `json:"gameId"`
	FEN           string                 `json:"fen"`
	Turn          string                 `json:"turn"`  // "w" or "b"
	State         string                 `json:"state"` // "ongoing", "white wins", etc
	Check         bool                   `json:"check"` // side to move is in check
	CastlingAvail string                 `json:"castling"`
	Moves         []string               `json:"moves"`
	Players       PlayersResponse        `json:"players"`
	LastMove      *MoveInfo              `json:"lastMove,omitempty"`
	Clarification *ClarificationResponse `json:"clarification,omitempty"`
}

type MoveInfo struct {
	Move         string `json:"move"`
	PlayerColor  string `json:"playerColor"` // "w" or "b"
	Captured     string `json:"captured,omitempty"`
	Promotion    string `json:"promotion,omitempty"`
	Castling     string `json:"castling,omitempty"` // "kingside" or "queenside"
	Check        bool   `json:"check"`
	Score        int    `json:"score,omitempty"`
	Depth        int    `json:"depth,omitempty"`
}

// CandidateInfo is one entry of a clarification prompt, presented 1-based.
type CandidateInfo struct {
	Index  int    `json:"index"`
	Piece  string `json:"piece"`  // "rook"
	Square string `json:"square"` // "a1"
}

// ClarificationResponse is the prompt payload the display collaborator
// renders and the voice parser later resolves an index against.
type ClarificationResponse struct {
	Piece          string          `json:"piece"`
	Target         string          `json:"target"`
	Candidates     []CandidateInfo `json:"candidates"`
	TimeoutSeconds int             `json:"timeoutSeconds"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
