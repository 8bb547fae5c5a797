package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/jackc/pgx/v5"
)

type QuestionProvider struct {
	db DB
}

func NewQuestionProvider(db DB) *QuestionProvider {
	return &QuestionProvider{
		db: db,
	}
}

// ListBlocksBySurvey returns the survey structure in block order then in-block question order.
func (p *QuestionProvider) ListBlocksBySurvey(ctx context.Context, surveyID string) ([]domains.Block, error) {
	blockRows, err := p.db.Query(ctx, `
          SELECT id, survey_id, title FROM blocks
          WHERE survey_id = $1
          ORDER BY position`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("select blocks: %w", err)
	}
	defer blockRows.Close()

	blocks := make([]domains.Block, 0)
	index := make(map[string]int)
	for blockRows.Next() {
		var b domains.Block
		if err := blockRows.Scan(&b.ID, &b.SurveyID, &b.Title); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Questions = []domains.Question{}
		index[b.ID] = len(blocks)
		blocks = append(blocks, b)
	}
	if err := blockRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	questionRows, err := p.db.Query(ctx, `
          SELECT q.id, q.block_id, q.title, q.type, q.required, q.options, q.conditions,
                 q.answered, q.skipped
          FROM questions q
          JOIN blocks b ON b.id = q.block_id
          WHERE b.survey_id = $1
          ORDER BY b.position, q.position`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer questionRows.Close()

	for questionRows.Next() {
		q, err := scanQuestion(questionRows)
		if err != nil {
			return nil, err
		}
		i, ok := index[q.BlockID]
		if !ok {
			continue
		}
		blocks[i].Questions = append(blocks[i].Questions, q)
	}
	if err := questionRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return blocks, nil
}

func scanQuestion(row pgx.Row) (domains.Question, error) {
	var (
		q        domains.Question
		qType    string
		condJSON []byte
	)
	if err := row.Scan(&q.ID, &q.BlockID, &q.Title, &qType, &q.Required, &q.Options, &condJSON,
		&q.Answered, &q.Skipped); err != nil {
		return domains.Question{}, fmt.Errorf("scan question: %w", err)
	}
	q.Type = domains.QuestionType(qType)
	if len(condJSON) > 0 {
		var cond domains.Condition
		if err := json.Unmarshal(condJSON, &cond); err != nil {
			return domains.Question{}, fmt.Errorf("decode condition of question %s: %w", q.ID, err)
		}
		q.Condition = &cond
	}
	return q, nil
}

// SaveBlocks makes blocks the complete structure of the survey. Rows are upserted
// by id, rows missing from blocks are removed. Counters of existing questions are
// left to IncrementQuestionCounters and never overwritten here.
func (p *QuestionProvider) SaveBlocks(ctx context.Context, surveyID string, blocks []domains.Block) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	blockIDs := make([]string, 0, len(blocks))
	questionIDs := make([]string, 0)

	for bi, b := range blocks {
		if _, err := tx.Exec(ctx, `
              INSERT INTO blocks (id, survey_id, position, title)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, title = EXCLUDED.title
              WHERE blocks.survey_id = EXCLUDED.survey_id`,
			b.ID, surveyID, bi, b.Title,
		); err != nil {
			return fmt.Errorf("upsert block: %w", err)
		}
		blockIDs = append(blockIDs, b.ID)

		for qi, q := range b.Questions {
			var condJSON []byte
			if q.Condition != nil {
				condJSON, err = json.Marshal(q.Condition)
				if err != nil {
					return fmt.Errorf("encode condition: %w", err)
				}
			}
			if _, err := tx.Exec(ctx, `
                  INSERT INTO questions (id, block_id, position, title, type, required, options, conditions, answered, skipped)
                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                  ON CONFLICT (id) DO UPDATE SET
                      block_id   = EXCLUDED.block_id,
                      position   = EXCLUDED.position,
                      title      = EXCLUDED.title,
                      type       = EXCLUDED.type,
                      required   = EXCLUDED.required,
                      options    = EXCLUDED.options,
                      conditions = EXCLUDED.conditions`,
				q.ID, b.ID, qi, q.Title, string(q.Type), q.Required, nonNil(q.Options), condJSON,
				q.Answered, q.Skipped,
			); err != nil {
				return fmt.Errorf("upsert question: %w", err)
			}
			questionIDs = append(questionIDs, q.ID)
		}
	}

	if _, err := tx.Exec(ctx, `
          DELETE FROM questions q USING blocks b
          WHERE q.block_id = b.id AND b.survey_id = $1 AND NOT (q.id = ANY($2))`,
		surveyID, questionIDs,
	); err != nil {
		return fmt.Errorf("delete removed questions: %w", err)
	}
	if _, err := tx.Exec(ctx, `
          DELETE FROM blocks WHERE survey_id = $1 AND NOT (id = ANY($2))`,
		surveyID, blockIDs,
	); err != nil {
		return fmt.Errorf("delete removed blocks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit blocks: %w", err)
	}
	return nil
}

// IncrementQuestionCounters adds to the stored counters in a single statement.
func (p *QuestionProvider) IncrementQuestionCounters(ctx context.Context, questionID string, answered, skipped int) error {
	tag, err := p.db.Exec(ctx, `
          UPDATE questions SET answered = answered + $2, skipped = skipped + $3
          WHERE id = $1`, questionID, answered, skipped)
	if err != nil {
		return fmt.Errorf("increment question counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
