// Package main implements a local console for playing by typed voice
// transcripts. It runs the full game stack in-process, no server needed:
// lines like "knight to f3" go through the same disambiguation flow the
// API exposes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"mentrachess/internal/core"
	"mentrachess/internal/processor"
	"mentrachess/internal/service"
	"mentrachess/internal/uci"
)

var pieceWords = map[string]string{
	"pawn":   "p",
	"knight": "n",
	"bishop": "b",
	"rook":   "r",
	"queen":  "q",
	"king":   "k",
}

type console struct {
	proc   *processor.Processor
	svc    *service.Service
	gameID string
}

func main() {
	enginePath := flag.String("engine-path", uci.DefaultEnginePath, "Path to the UCI engine binary for computer seats")
	vsComputer := flag.Bool("computer", false, "Play against the computer (black seat)")
	level := flag.Int("level", 5, "Computer skill level (0-20)")
	flag.Parse()

	svc := service.New(nil, []byte("repl-local-secret-not-for-servers!"))
	proc := processor.New(svc, *enginePath)
	defer proc.Close()

	c := &console{proc: proc, svc: svc}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chess> ",
		HistoryFile:     ".chess_repl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("Voice chess console")
	fmt.Println(`Say moves like "knight to f3", "pawn e4", or "e2e4".`)
	fmt.Println(`Commands: new, board, state, undo [n], computer, help, exit`)
	fmt.Println()

	c.newGame(*vsComputer, *level)

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		c.handle(line, *vsComputer, *level)
	}
}

func (c *console) handle(line string, vsComputer bool, level int) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "help":
		fmt.Println(`  new            start a fresh game`)
		fmt.Println(`  board          print the board`)
		fmt.Println(`  state          print FEN, turn, and status`)
		fmt.Println(`  undo [n]       take back moves`)
		fmt.Println(`  computer       ask the engine to move (computer seat only)`)
		fmt.Println(`  <piece> <sq>   voice-style move, e.g. "rook to d1"`)
		fmt.Println(`  <sq><sq>       coordinate move, e.g. "e2e4"`)
		return
	case "new":
		c.newGame(vsComputer, level)
		return
	case "board":
		c.printBoard()
		return
	case "state":
		c.printState()
		return
	case "undo":
		count := 1
		if len(fields) > 1 {
			fmt.Sscanf(fields[1], "%d", &count)
		}
		resp := c.proc.Execute(processor.NewUndoMoveCommand(c.gameID, core.UndoRequest{Count: count}))
		c.report(resp)
		return
	case "computer":
		resp := c.proc.Execute(processor.NewMakeMoveCommand(c.gameID, core.MoveRequest{Source: processor.ComputerMoveSentinel}))
		c.report(resp)
		return
	}

	// A pending clarification swallows the whole line as the selection.
	if _, pending := c.svc.Clarifications().Get(c.gameID); pending {
		resp := c.proc.Execute(processor.NewClarifyCommand(c.gameID, core.ClarifyRequest{Selection: line}))
		c.report(resp)
		return
	}

	// Coordinate move: "e2e4" or "e2 e4"
	joined := strings.Join(fields, "")
	if len(joined) == 4 && isSquare(joined[:2]) && isSquare(joined[2:]) {
		resp := c.proc.Execute(processor.NewMakeMoveCommand(c.gameID, core.MoveRequest{
			Source: joined[:2],
			Target: joined[2:],
		}))
		c.report(resp)
		return
	}

	// Voice-style move: piece word, optional "to", destination square.
	if piece, ok := pieceWords[fields[0]]; ok {
		rest := fields[1:]
		if len(rest) > 0 && rest[0] == "to" {
			rest = rest[1:]
		}
		if len(rest) == 1 && isSquare(rest[0]) {
			resp := c.proc.Execute(processor.NewVoiceMoveCommand(c.gameID, core.VoiceMoveRequest{
				Piece:  piece,
				Target: rest[0],
			}))
			c.report(resp)
			return
		}
	}

	fmt.Println(`Did not understand. Try "knight to f3" or "help".`)
}

func (c *console) newGame(vsComputer bool, level int) {
	if c.gameID != "" {
		c.proc.Execute(processor.NewDeleteGameCommand(c.gameID))
	}

	black := core.PlayerConfig{Type: core.PlayerHuman}
	if vsComputer {
		black = core.PlayerConfig{Type: core.PlayerComputer, Level: level, SearchTime: 1000}
	}

	resp := c.proc.Execute(processor.NewCreateGameCommand(core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: black,
	}))
	if !resp.Success {
		fmt.Printf("failed to create game: %s\n", resp.Error.Error)
		return
	}

	state := resp.Data.(core.GameResponse)
	c.gameID = state.GameID
	fmt.Println("New game started.")
	c.printBoard()
}

func (c *console) printBoard() {
	resp := c.proc.Execute(processor.NewGetBoardCommand(c.gameID))
	if !resp.Success {
		fmt.Printf("error: %s\n", resp.Error.Error)
		return
	}
	board := resp.Data.(core.BoardResponse)
	fmt.Println(board.Board)
}

func (c *console) printState() {
	resp := c.proc.Execute(processor.NewGetGameCommand(c.gameID))
	if !resp.Success {
		fmt.Printf("error: %s\n", resp.Error.Error)
		return
	}
	state := resp.Data.(core.GameResponse)
	fmt.Printf("FEN:    %s\n", state.FEN)
	fmt.Printf("Turn:   %s\n", state.Turn)
	fmt.Printf("State:  %s\n", state.State)
	if state.Check {
		fmt.Println("Check!")
	}
	if len(state.Moves) > 0 {
		fmt.Printf("Moves:  %s\n", strings.Join(state.Moves, " "))
	}
}

// report prints the outcome of a move-like command, including the
// clarification prompt when the command was ambiguous.
func (c *console) report(resp processor.Response) {
	if !resp.Success {
		msg := resp.Error.Error
		if resp.Error.Details != "" {
			msg += " (" + resp.Error.Details + ")"
		}
		fmt.Println(msg)
		return
	}

	state, ok := resp.Data.(core.GameResponse)
	if !ok {
		return
	}

	if clar := state.Clarification; clar != nil {
		fmt.Printf("Which %s to %s?\n", clar.Piece, clar.Target)
		for _, cand := range clar.Candidates {
			fmt.Printf("  %d: %s on %s\n", cand.Index, cand.Piece, cand.Square)
		}
		fmt.Printf("Say a number within %d seconds.\n", clar.TimeoutSeconds)
		return
	}

	if resp.Pending {
		fmt.Println("Thinking...")
		return
	}

	if last := state.LastMove; last != nil {
		note := last.Move
		if last.Captured != "" {
			note += ", takes " + last.Captured
		}
		if last.Castling != "" {
			note += ", castles " + last.Castling
		}
		if last.Check {
			note += ", check"
		}
		fmt.Println(note)
	}

	c.printBoard()

	switch state.State {
	case "white wins", "black wins":
		fmt.Printf("Checkmate, %s.\n", state.State)
	case "stalemate":
		fmt.Println("Stalemate.")
	}
}

func isSquare(s string) bool {
	_, ok := core.ToCoordinate(s)
	return ok
}
