// Package processor executes game commands. It is the single place where
// the rules engine, the voice disambiguation flow, and the session layer
// meet; HTTP handlers and the console front-end both funnel through
// Execute.
package processor

import (
	"fmt"
	"log"
	"strings"
	"time"

	"mentrachess/internal/core"
	"mentrachess/internal/engine"
	"mentrachess/internal/game"
	"mentrachess/internal/service"
	"mentrachess/internal/voice"
)

// ComputerMoveSentinel in a move request's source field asks the server to
// play the computer's move for the current turn.
const ComputerMoveSentinel = "cccc"

type Processor struct {
	svc   *service.Service
	queue *EngineQueue
}

func New(svc *service.Service, enginePath string) *Processor {
	return &Processor{
		svc:   svc,
		queue: NewEngineQueue(2, enginePath),
	}
}

// Execute dispatches a command to its handler.
func (p *Processor) Execute(cmd Command) Response {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdVoiceMove:
		return p.handleVoiceMove(cmd)
	case CmdClarify:
		return p.handleClarify(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	default:
		return errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// Close shuts down the engine queue.
func (p *Processor) Close() {
	p.queue.Shutdown(5 * time.Second)
}

func (p *Processor) handleCreateGame(cmd Command) Response {
	req, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	hasComputer := req.White.Type == core.PlayerComputer || req.Black.Type == core.PlayerComputer
	if hasComputer && !p.svc.CanCreateComputerGame() {
		return errorResponse("computer game limit reached", core.ErrResourceLimit)
	}

	initialFEN := engine.StartingFEN
	if req.FEN != "" {
		initialFEN = req.FEN
	}
	pos, err := engine.ParseFEN(initialFEN)
	if err != nil {
		return errorDetails("invalid position", core.ErrInvalidFEN, err.Error())
	}
	// Re-serialize so the stored FEN is canonical regardless of input
	// spacing or redundant fields.
	initialFEN = engine.ToFEN(pos)

	whitePlayer := core.NewPlayer(req.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(req.Black, core.ColorBlack)
	if cmd.UserID != "" {
		if whitePlayer.Type == core.PlayerHuman {
			whitePlayer.ID = cmd.UserID
		}
		if blackPlayer.Type == core.PlayerHuman {
			blackPlayer.ID = cmd.UserID
		}
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer, initialFEN, pos.Turn); err != nil {
		return errorResponse(err.Error(), core.ErrInternalError)
	}
	if hasComputer {
		p.svc.IncrementComputerGames()
	}

	// A custom position may already be decided.
	p.settleGameEnd(gameID, pos, core.OppositeColor(pos.Turn))

	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return errorResponse(err.Error(), core.ErrInternalError)
	}
	return Response{Success: true, Data: p.buildGameResponse(gameID, g)}
}

func (p *Processor) handleConfigurePlayers(cmd Command) Response {
	req, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}

	wasComputer := g.GetPlayer(core.ColorWhite).Type == core.PlayerComputer ||
		g.GetPlayer(core.ColorBlack).Type == core.PlayerComputer
	nowComputer := req.White.Type == core.PlayerComputer || req.Black.Type == core.PlayerComputer

	if nowComputer && !wasComputer && !p.svc.CanCreateComputerGame() {
		return errorResponse("computer game limit reached", core.ErrResourceLimit)
	}

	whitePlayer := core.NewPlayer(req.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(req.Black, core.ColorBlack)
	if cmd.UserID != "" {
		if whitePlayer.Type == core.PlayerHuman {
			whitePlayer.ID = cmd.UserID
		}
		if blackPlayer.Type == core.PlayerHuman {
			blackPlayer.ID = cmd.UserID
		}
	}

	if err := p.svc.UpdatePlayers(cmd.GameID, whitePlayer, blackPlayer); err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}

	if nowComputer && !wasComputer {
		p.svc.IncrementComputerGames()
	} else if !nowComputer && wasComputer {
		p.svc.DecrementComputerGames()
	}

	return Response{Success: true, Data: p.buildGameResponse(cmd.GameID, g)}
}

func (p *Processor) handleGetGame(cmd Command) Response {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}
	return Response{Success: true, Data: p.buildGameResponse(cmd.GameID, g)}
}

func (p *Processor) handleDeleteGame(cmd Command) Response {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}
	return Response{Success: true, Data: map[string]string{"gameId": cmd.GameID, "status": "deleted"}}
}

func (p *Processor) handleGetBoard(cmd Command) Response {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}

	fen := g.CurrentFEN()
	pos, err := engine.ParseFEN(fen)
	if err != nil {
		return errorResponse("stored position unreadable", core.ErrInternalError)
	}

	return Response{Success: true, Data: core.BoardResponse{
		FEN:   fen,
		Board: pos.Board.ToASCII(),
	}}
}

func (p *Processor) handleUndoMove(cmd Command) Response {
	req, ok := cmd.Args.(core.UndoRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return errorResponse("game not found", core.ErrGameNotFound)
	}
	if g.State() == core.StatePending {
		return errorResponse("computer move in progress", core.ErrInvalidRequest)
	}

	if err := p.svc.UndoMoves(cmd.GameID, req.Count); err != nil {
		return errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	return Response{Success: true, Data: p.buildGameResponse(cmd.GameID, g)}
}

func (p *Processor) handleMakeMove(cmd Command) Response {
	req, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, resp := p.playableGame(cmd.GameID)
	if resp != nil {
		return *resp
	}

	if req.Source == ComputerMoveSentinel {
		return p.triggerComputerMove(cmd.GameID, g)
	}

	if g.NextPlayer().Type != core.PlayerHuman {
		return errorResponse("not a human player's turn", core.ErrNotHumanTurn)
	}

	source, target := req.Source, req.Target
	if len(source) == 4 && target == "" {
		source, target = source[:2], source[2:]
	}
	from, ok := core.ToCoordinate(source)
	if !ok {
		return errorDetails("invalid move", core.ErrInvalidMove, engine.ReasonInvalidCoordinates)
	}
	to, ok := core.ToCoordinate(target)
	if !ok {
		return errorDetails("invalid move", core.ErrInvalidMove, engine.ReasonInvalidCoordinates)
	}

	return p.executeMove(cmd.GameID, g, from, to)
}

func (p *Processor) handleVoiceMove(cmd Command) Response {
	req, ok := cmd.Args.(core.VoiceMoveRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, resp := p.playableGame(cmd.GameID)
	if resp != nil {
		return *resp
	}
	if g.NextPlayer().Type != core.PlayerHuman {
		return errorResponse("not a human player's turn", core.ErrNotHumanTurn)
	}

	// A fresh command supersedes any clarification still pending.
	p.svc.Clarifications().Discard(cmd.GameID)

	pieceType := core.PieceTypeFromChar(req.Piece[0])
	if pieceType == core.NoPiece {
		return errorDetails("invalid move", core.ErrInvalidRequest, fmt.Sprintf("unknown piece %q", req.Piece))
	}
	target, ok := core.ToCoordinate(req.Target)
	if !ok {
		return errorDetails("invalid move", core.ErrInvalidMove, engine.ReasonInvalidCoordinates)
	}

	pos, err := engine.ParseFEN(g.CurrentFEN())
	if err != nil {
		return errorResponse("stored position unreadable", core.ErrInternalError)
	}

	candidates := voice.FindCandidates(pos.Board, pieceType, pos.Turn, target)
	legal := voice.FilterLegal(pos.Board, candidates, target, pos.Turn, pos.Castling)

	switch len(legal) {
	case 0:
		return errorDetails(
			fmt.Sprintf("no %s can move to %s", pieceType, target.Algebraic()),
			core.ErrInvalidMove, "")
	case 1:
		return p.executeMove(cmd.GameID, g, legal[0].From, target)
	default:
		data := voice.NewClarification(pieceType, target, legal, service.ClarificationTTL)
		p.svc.Clarifications().Put(cmd.GameID, data, service.ClarificationTTL)
		return Response{Success: true, Pending: true, Data: p.buildGameResponse(cmd.GameID, g)}
	}
}

func (p *Processor) handleClarify(cmd Command) Response {
	req, ok := cmd.Args.(core.ClarifyRequest)
	if !ok {
		return errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, resp := p.playableGame(cmd.GameID)
	if resp != nil {
		return *resp
	}

	data, ok := p.svc.Clarifications().Get(cmd.GameID)
	if !ok {
		return errorResponse("no clarification pending", core.ErrNoClarification)
	}

	index, ok := voice.ParseSelection(req.Selection)
	if !ok {
		// The clarification stays pending; the caller re-prompts from
		// the game state.
		return errorDetails("could not understand selection", core.ErrAmbiguousMove, req.Selection)
	}
	candidate, ok := data.Candidate(index)
	if !ok {
		return errorDetails(
			fmt.Sprintf("selection %d out of range, %d candidates offered", index, len(data.Candidates)),
			core.ErrAmbiguousMove, "")
	}

	p.svc.Clarifications().Resolve(cmd.GameID)
	return p.executeMove(cmd.GameID, g, candidate.From, data.Target)
}

// playableGame loads the game and rejects commands the current lifecycle
// state cannot accept.
func (p *Processor) playableGame(gameID string) (*game.Game, *Response) {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		r := errorResponse("game not found", core.ErrGameNotFound)
		return nil, &r
	}

	switch g.State() {
	case core.StatePending:
		r := errorResponse("computer move in progress", core.ErrInvalidRequest)
		return nil, &r
	case core.StateStuck:
		r := errorResponse("game is stuck, undo or delete it", core.ErrInvalidRequest)
		return nil, &r
	case core.StateWhiteWins, core.StateBlackWins, core.StateStalemate:
		r := errorResponse("game is over", core.ErrGameOver)
		return nil, &r
	}
	return g, nil
}

// executeMove runs one ply through the engine and, when it validates,
// commits it to the game and storage.
func (p *Processor) executeMove(gameID string, g *game.Game, from, to core.Coordinate) Response {
	pos, err := engine.ParseFEN(g.CurrentFEN())
	if err != nil {
		return errorResponse("stored position unreadable", core.ErrInternalError)
	}
	mover := pos.Turn

	newPos, move, verdict := engine.ApplyMove(pos, from, to)
	if !verdict.Valid {
		return errorDetails("invalid move", core.ErrInvalidMove, verdict.Reason)
	}

	newFEN := engine.ToFEN(newPos)
	if err := p.svc.ApplyMove(gameID, move.Notation, newFEN, newPos.Turn, verdict.OpponentInCheck); err != nil {
		return errorResponse(err.Error(), core.ErrInternalError)
	}

	result := &game.MoveResult{
		Move:        move.Notation,
		PlayerColor: mover,
		GameState:   core.StateOngoing,
		Check:       verdict.OpponentInCheck,
	}
	if !move.Captured.IsEmpty() {
		result.Captured = move.Captured.Type.String()
	}
	if move.Promotion != core.NoPiece {
		result.Promotion = move.Promotion.String()
	}
	if move.IsCastling {
		result.Castling = move.CastlingSide.String()
	}
	p.svc.SetLastMoveResult(gameID, result)

	p.settleGameEnd(gameID, newPos, mover)

	return Response{Success: true, Data: p.buildGameResponse(gameID, g)}
}

// triggerComputerMove submits the position to the engine queue and marks
// the game pending. The callback runs on a queue goroutine.
func (p *Processor) triggerComputerMove(gameID string, g *game.Game) Response {
	player := g.NextPlayer()
	if player.Type != core.PlayerComputer {
		return errorResponse("current turn is not a computer seat", core.ErrInvalidRequest)
	}

	fen := g.CurrentFEN()
	color := g.NextTurnColor()
	p.svc.UpdateGameState(gameID, core.StatePending)

	p.queue.SubmitAsync(gameID, fen, color, player, func(result EngineResult) {
		p.completeComputerMove(gameID, color, result)
	})

	return Response{Success: true, Pending: true, Data: p.buildGameResponse(gameID, g)}
}

// completeComputerMove applies an engine suggestion. The suggestion is
// validated by the rules engine like any other move; a suggestion that
// fails validation parks the game in the stuck state rather than
// corrupting it.
func (p *Processor) completeComputerMove(gameID string, color core.Color, result EngineResult) {
	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return // deleted while the engine was thinking
	}
	if g.State() != core.StatePending {
		return
	}

	if result.Error != nil {
		log.Printf("game %s: engine failed: %v", gameID, result.Error)
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}

	if result.Move == "" || result.Move == "(none)" {
		// No move available: classify the position ourselves.
		pos, err := engine.ParseFEN(g.CurrentFEN())
		if err != nil {
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}
		end := engine.CheckGameEnd(pos, core.OppositeColor(color))
		if end.IsOver {
			p.svc.UpdateGameState(gameID, end.Result)
		} else {
			log.Printf("game %s: engine returned no move in a live position", gameID)
			p.svc.UpdateGameState(gameID, core.StateStuck)
		}
		return
	}

	if len(result.Move) < 4 {
		log.Printf("game %s: malformed engine move %q", gameID, result.Move)
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}
	from, okFrom := core.ToCoordinate(result.Move[:2])
	to, okTo := core.ToCoordinate(result.Move[2:4])
	if !okFrom || !okTo {
		log.Printf("game %s: malformed engine move %q", gameID, result.Move)
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}

	pos, err := engine.ParseFEN(g.CurrentFEN())
	if err != nil {
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}
	newPos, move, verdict := engine.ApplyMove(pos, from, to)
	if !verdict.Valid {
		log.Printf("game %s: engine move %s rejected: %s", gameID, result.Move, verdict.Reason)
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}

	newFEN := engine.ToFEN(newPos)
	p.svc.UpdateGameState(gameID, core.StateOngoing)
	if err := p.svc.ApplyMove(gameID, move.Notation, newFEN, newPos.Turn, verdict.OpponentInCheck); err != nil {
		log.Printf("game %s: failed to record engine move: %v", gameID, err)
		p.svc.UpdateGameState(gameID, core.StateStuck)
		return
	}

	moveResult := &game.MoveResult{
		Move:        move.Notation,
		PlayerColor: color,
		GameState:   core.StateOngoing,
		Check:       verdict.OpponentInCheck,
		Score:       result.Score,
		Depth:       result.Depth,
	}
	if !move.Captured.IsEmpty() {
		moveResult.Captured = move.Captured.Type.String()
	}
	if move.Promotion != core.NoPiece {
		moveResult.Promotion = move.Promotion.String()
	}
	if move.IsCastling {
		moveResult.Castling = move.CastlingSide.String()
	}
	p.svc.SetLastMoveResult(gameID, moveResult)

	p.settleGameEnd(gameID, newPos, color)
}

// settleGameEnd checks the position for checkmate or stalemate and records
// the terminal state if reached.
func (p *Processor) settleGameEnd(gameID string, pos engine.Position, lastMoveBy core.Color) {
	end := engine.CheckGameEnd(pos, lastMoveBy)
	if end.IsOver {
		p.svc.UpdateGameState(gameID, end.Result)
	}
}

func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	fen := g.CurrentFEN()

	resp := core.GameResponse{
		GameID:        gameID,
		FEN:           fen,
		Turn:          g.NextTurnColor().String(),
		State:         g.State().String(),
		Check:         g.InCheck(),
		CastlingAvail: castlingField(fen),
		Moves:         g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if last := g.LastResult(); last != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        last.Move,
			PlayerColor: last.PlayerColor.String(),
			Captured:    last.Captured,
			Promotion:   last.Promotion,
			Castling:    last.Castling,
			Check:       last.Check,
			Score:       last.Score,
			Depth:       last.Depth,
		}
	}

	if data, ok := p.svc.Clarifications().Get(gameID); ok {
		resp.Clarification = data.PromptPayload(service.ClarificationTTL)
	}

	return resp
}

func castlingField(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) >= 3 {
		return fields[2]
	}
	return "-"
}

func errorResponse(message, code string) Response {
	return Response{
		Success: false,
		Error:   &core.ErrorResponse{Error: message, Code: code},
	}
}

func errorDetails(message, code, details string) Response {
	return Response{
		Success: false,
		Error:   &core.ErrorResponse{Error: message, Code: code, Details: details},
	}
}
