package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mentrachess/internal/core"
	"mentrachess/internal/engine"
)

func newTestGame() *Game {
	white := &core.Player{ID: "w-id", Type: core.PlayerHuman}
	black := &core.Player{ID: "b-id", Type: core.PlayerHuman}
	return New(engine.StartingFEN, white, black, core.ColorWhite)
}

func TestGameSnapshotHistory(t *testing.T) {
	g := newTestGame()

	if g.CurrentFEN() != engine.StartingFEN {
		t.Fatalf("initial FEN = %q", g.CurrentFEN())
	}
	if g.NextPlayer().ID != "w-id" {
		t.Fatalf("white does not open: next player %q", g.NextPlayer().ID)
	}

	g.AddSnapshot("fen-after-e4", "e2e4", core.ColorBlack, false)
	g.AddSnapshot("fen-after-e5", "e7e5", core.ColorWhite, false)

	if g.CurrentFEN() != "fen-after-e5" {
		t.Fatalf("current FEN = %q, want latest snapshot", g.CurrentFEN())
	}
	if g.NextTurnColor() != core.ColorWhite {
		t.Fatalf("turn = %v after two moves, want white", g.NextTurnColor())
	}

	want := []string{"e2e4", "e7e5"}
	if diff := cmp.Diff(want, g.Moves()); diff != "" {
		t.Fatalf("move list mismatch (-want +got):\n%s", diff)
	}
}

func TestGameUndoTruncatesHistory(t *testing.T) {
	g := newTestGame()
	g.AddSnapshot("fen-after-e4", "e2e4", core.ColorBlack, false)
	g.AddSnapshot("fen-after-e5", "e7e5", core.ColorWhite, false)
	g.SetState(core.StateWhiteWins)
	g.SetLastResult(&MoveResult{Move: "e7e5", PlayerColor: core.ColorBlack})

	if err := g.UndoMoves(2); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if g.CurrentFEN() != engine.StartingFEN {
		t.Fatalf("FEN after full undo = %q, want initial", g.CurrentFEN())
	}
	if len(g.Moves()) != 0 {
		t.Fatalf("moves after undo = %v, want none", g.Moves())
	}
	// Undo reopens a decided game and clears the last-move record.
	if g.State() != core.StateOngoing {
		t.Fatalf("state after undo = %v, want ongoing", g.State())
	}
	if g.LastResult() != nil {
		t.Fatalf("last result survived undo: %+v", g.LastResult())
	}

	if err := g.UndoMoves(1); err == nil {
		t.Fatalf("undo past the initial position accepted")
	}
}

func TestUpdatePlayersRebindsCurrentTurn(t *testing.T) {
	g := newTestGame()

	newWhite := &core.Player{ID: "w2-id", Type: core.PlayerComputer}
	newBlack := &core.Player{ID: "b2-id", Type: core.PlayerHuman}
	g.UpdatePlayers(newWhite, newBlack)

	if g.NextPlayer().ID != "w2-id" {
		t.Fatalf("current snapshot still bound to old player: %q", g.NextPlayer().ID)
	}
	if g.GetPlayer(core.ColorBlack).ID != "b2-id" {
		t.Fatalf("black player not replaced")
	}
}
