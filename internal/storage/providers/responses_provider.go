package providers

import (
	"context"
	"fmt"

	"surveysphere/internal/domains"

	"github.com/jackc/pgx/v5"
)

type ResponseProvider struct {
	db DB
}

func NewResponseProvider(db DB) *ResponseProvider {
	return &ResponseProvider{
		db: db,
	}
}

const insertResponse = `
      INSERT INTO responses (id, question_id, question, question_type, answer, options)
      VALUES ($1, $2, $3, $4, $5, $6)`

func scanResponse(row pgx.Row) (domains.Response, error) {
	var r domains.Response
	if err := row.Scan(&r.ID, &r.QuestionID, &r.Question, &r.QuestionType, &r.Answer, &r.Options); err != nil {
		return domains.Response{}, fmt.Errorf("scan response: %w", err)
	}
	return r, nil
}

func (p *ResponseProvider) SaveResponses(ctx context.Context, responses []domains.Response) error {
	if len(responses) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range responses {
		batch.Queue(insertResponse, r.ID, r.QuestionID, r.Question, r.QuestionType, nonNil(r.Answer), nonNil(r.Options))
	}
	if err := p.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert responses: %w", err)
	}
	return nil
}

// ListResponsesByQuestions groups every stored response of the given questions by question id, oldest first.
func (p *ResponseProvider) ListResponsesByQuestions(ctx context.Context, questionIDs []string) (map[string][]domains.Response, error) {
	grouped := make(map[string][]domains.Response, len(questionIDs))
	if len(questionIDs) == 0 {
		return grouped, nil
	}

	rows, err := p.db.Query(ctx, `
          SELECT id, question_id, question, question_type, answer, options
          FROM responses
          WHERE question_id = ANY($1)
          ORDER BY created_at, id`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		grouped[r.QuestionID] = append(grouped[r.QuestionID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return grouped, nil
}
