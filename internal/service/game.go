package service

import (
	"fmt"
	"time"

	"mentrachess/internal/core"
	"mentrachess/internal/game"
	"mentrachess/internal/storage"
)

// CreateGame registers a new game with pre-constructed players
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player, initialFEN string, startingTurn core.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}

	s.games[id] = game.New(initialFEN, whitePlayer, blackPlayer, startingTurn)

	if s.store != nil {
		record := storage.GameRecord{
			GameID:          id,
			InitialFEN:      initialFEN,
			WhitePlayerID:   whitePlayer.ID,
			WhiteType:       int(whitePlayer.Type),
			WhiteLevel:      whitePlayer.Level,
			WhiteSearchTime: whitePlayer.SearchTime,
			BlackPlayerID:   blackPlayer.ID,
			BlackType:       int(blackPlayer.Type),
			BlackLevel:      blackPlayer.Level,
			BlackSearchTime: blackPlayer.SearchTime,
			StartTimeUTC:    time.Now().UTC(),
		}
		s.store.RecordNewGame(record)
	}

	return nil
}

// GetGame returns a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game not found: %s", gameID)
	}
	return g, nil
}

// UpdatePlayers replaces players in an existing game
func (s *Service) UpdatePlayers(gameID string, whitePlayer, blackPlayer *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}

	g.UpdatePlayers(whitePlayer, blackPlayer)
	return nil
}

// ApplyMove appends a move snapshot and notifies long-poll waiters. Any
// pending clarification for the game is dropped: the board has changed and
// the stored candidates no longer describe it.
func (s *Service) ApplyMove(gameID, notation, newFEN string, nextTurn core.Color, check bool) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("game not found: %s", gameID)
	}

	g.AddSnapshot(newFEN, notation, nextTurn, check)
	moveCount := len(g.Moves())
	mover := core.OppositeColor(nextTurn)
	s.mu.Unlock()

	s.clarifier.Discard(gameID)

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveCount,
			Notation:     notation,
			FENAfterMove: newFEN,
			PlayerColor:  mover.String(),
			GaveCheck:    check,
			MoveTimeUTC:  time.Now().UTC(),
		})
	}

	s.waiter.NotifyGame(gameID, moveCount)
	return nil
}

// SetLastMoveResult stores metadata about the most recent move
func (s *Service) SetLastMoveResult(gameID string, result *game.MoveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.games[gameID]; ok {
		g.SetLastResult(result)
	}
}

// UpdateGameState transitions a game's lifecycle state
func (s *Service) UpdateGameState(gameID string, state core.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.games[gameID]; ok {
		g.SetState(state)
	}
}

// UndoMoves reverts the last count moves
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("game not found: %s", gameID)
	}

	if err := g.UndoMoves(count); err != nil {
		s.mu.Unlock()
		return err
	}
	remaining := len(g.Moves())
	s.mu.Unlock()

	s.clarifier.Discard(gameID)

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remaining)
	}

	s.waiter.NotifyGame(gameID, remaining)
	return nil
}

// DeleteGame removes a game and wakes anyone waiting on it
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("game not found: %s", gameID)
	}

	if g.NextPlayer().Type == core.PlayerComputer || g.GetPlayer(core.OppositeColor(g.NextTurnColor())).Type == core.PlayerComputer {
		s.computerGames.Add(-1)
	}

	delete(s.games, gameID)
	s.mu.Unlock()

	s.clarifier.Discard(gameID)
	s.waiter.RemoveGame(gameID)

	if s.store != nil {
		s.store.DeleteGameRecord(gameID)
	}

	return nil
}
