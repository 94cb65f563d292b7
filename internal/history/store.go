// Package history archives resolved rounds to Postgres. The archive is
// write-mostly bookkeeping: game state never reads it back, and callers treat
// insert failures as ignorable.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/williambechard/cardmath-backend/internal"
)

const schema = `
CREATE TABLE IF NOT EXISTS round_history (
	id             BIGSERIAL PRIMARY KEY,
	room_id        TEXT        NOT NULL,
	operand_one    INT         NOT NULL,
	operand_two    INT         NOT NULL,
	correct_answer INT         NOT NULL,
	solved_by      INT,
	solved_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS round_history_room_idx ON round_history (room_id);
`

type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and ensures the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to history database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) RecordRound(ctx context.Context, roomId string, rec internal.RoundRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO round_history (room_id, operand_one, operand_two, correct_answer, solved_by, solved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		roomId, rec.Operands[0], rec.Operands[1], rec.CorrectAnswer, rec.SolvedBy, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert round record: %w", err)
	}
	return nil
}

// RoundsForRoom returns the archived rounds for a room, oldest first.
func (s *Store) RoundsForRoom(ctx context.Context, roomId string) ([]internal.RoundRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT operand_one, operand_two, correct_answer, solved_by, solved_at
		 FROM round_history WHERE room_id = $1 ORDER BY id`,
		roomId)
	if err != nil {
		return nil, fmt.Errorf("query round records: %w", err)
	}
	defer rows.Close()

	var records []internal.RoundRecord
	for rows.Next() {
		var rec internal.RoundRecord
		if err := rows.Scan(&rec.Operands[0], &rec.Operands[1], &rec.CorrectAnswer, &rec.SolvedBy, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan round record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() {
	s.pool.Close()
}
