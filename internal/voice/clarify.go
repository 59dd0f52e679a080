package voice

import (
	"time"

	"mentrachess/internal/core"
)

// ClarificationData is a pending candidate list waiting for the speaker to
// pick one. Candidates keep their generation order; they are presented to
// the caller 1-based.
type ClarificationData struct {
	PieceType  core.PieceType
	Target     core.Coordinate
	Candidates []Candidate
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// NewClarification builds the pending state for a candidate list.
func NewClarification(pieceType core.PieceType, target core.Coordinate, candidates []Candidate, ttl time.Duration) *ClarificationData {
	now := time.Now().UTC()
	return &ClarificationData{
		PieceType:  pieceType,
		Target:     target,
		Candidates: candidates,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Candidate returns the 1-based selection, or ok=false when the index is
// out of range.
func (d *ClarificationData) Candidate(index int) (Candidate, bool) {
	if index < 1 || index > len(d.Candidates) {
		return Candidate{}, false
	}
	return d.Candidates[index-1], true
}

// PromptPayload renders the candidate list for the display collaborator.
func (d *ClarificationData) PromptPayload(timeout time.Duration) *core.ClarificationResponse {
	resp := &core.ClarificationResponse{
		Piece:          d.PieceType.String(),
		Target:         d.Target.Algebraic(),
		TimeoutSeconds: int(timeout / time.Second),
	}
	for i, cand := range d.Candidates {
		resp.Candidates = append(resp.Candidates, core.CandidateInfo{
			Index:  i + 1,
			Piece:  cand.Piece.Type.String(),
			Square: cand.From.Algebraic(),
		})
	}
	return resp
}
