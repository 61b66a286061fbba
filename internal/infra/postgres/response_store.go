package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"sleep-quiz-service/internal/domain"
)

// ResponseStore writes finished questionnaires to the quiz_responses table.
type ResponseStore struct {
	pool *pgxpool.Pool
}

func NewResponseStore(pool *pgxpool.Pool) *ResponseStore {
	return &ResponseStore{pool: pool}
}

func (s *ResponseStore) InsertQuizResponse(ctx context.Context, payload domain.Payload) (string, error) {
	record, err := payload.Record()
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO quiz_responses (name, email, age, gender, responses, flags, completed_at, quiz_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text`,
		record.Name,
		record.Email,
		record.Age,
		record.Gender,
		record.Responses,
		record.Flags,
		payload.CompletedAt.UTC(),
		record.QuizVersion,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert quiz response: %w", err)
	}
	return id, nil
}
