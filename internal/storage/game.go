package storage

import "database/sql"

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueueWrite("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen,
			white_player_id, white_type, white_level, white_search_time,
			black_player_id, black_type, black_level, black_search_time,
			start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN,
			record.WhitePlayerID, record.WhiteType, record.WhiteLevel, record.WhiteSearchTime,
			record.BlackPlayerID, record.BlackType, record.BlackLevel, record.BlackSearchTime,
			record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueueWrite("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, notation, fen_after_move, player_color, gave_check, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.Notation,
			record.FENAfterMove, record.PlayerColor, record.GaveCheck, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueueWrite("undo cleanup", func(tx *sql.Tx) error {
		query := `DELETE FROM moves WHERE game_id = ? AND move_number > ?`
		_, err := tx.Exec(query, gameID, afterMoveNumber)
		return err
	})
}

// DeleteGameRecord asynchronously removes a game and its moves
func (s *Store) DeleteGameRecord(gameID string) {
	s.enqueueWrite("game deletion", func(tx *sql.Tx) error {
		query := `DELETE FROM games WHERE game_id = ?`
		_, err := tx.Exec(query, gameID)
		return err
	})
}

// GetGameMoves returns the recorded moves of a game in order.
func (s *Store) GetGameMoves(gameID string) ([]MoveRecord, error) {
	query := `SELECT move_id, game_id, move_number, notation, fen_after_move, player_color, gave_check, move_time_utc
		FROM moves WHERE game_id = ? ORDER BY move_number ASC`

	rows, err := s.db.Query(query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(
			&m.MoveID, &m.GameID, &m.MoveNumber, &m.Notation,
			&m.FENAfterMove, &m.PlayerColor, &m.GaveCheck, &m.MoveTimeUTC,
		); err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// ListGames returns recorded games, optionally filtered by game ID or by
// a player occupying either seat. Empty or "*" filters match everything.
func (s *Store) ListGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT game_id, initial_fen,
		white_player_id, white_type, white_level, white_search_time,
		black_player_id, black_type, black_level, black_search_time,
		start_time_utc
		FROM games WHERE 1=1`
	var args []any

	if gameID != "" && gameID != "*" {
		query += ` AND game_id = ?`
		args = append(args, gameID)
	}
	if playerID != "" && playerID != "*" {
		query += ` AND (white_player_id = ? OR black_player_id = ?)`
		args = append(args, playerID, playerID)
	}
	query += ` ORDER BY start_time_utc ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(
			&g.GameID, &g.InitialFEN,
			&g.WhitePlayerID, &g.WhiteType, &g.WhiteLevel, &g.WhiteSearchTime,
			&g.BlackPlayerID, &g.BlackType, &g.BlackLevel, &g.BlackSearchTime,
			&g.StartTimeUTC,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// CountGames returns the number of recorded games.
func (s *Store) CountGames() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&count)
	return count, err
}
