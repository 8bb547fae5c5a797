package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/jackc/pgx/v5"
)

type RespondentProvider struct {
	db DB
}

func NewRespondentProvider(db DB) *RespondentProvider {
	return &RespondentProvider{
		db: db,
	}
}

func (p *RespondentProvider) CountRespondentsBySurvey(ctx context.Context, surveyID string) (int64, error) {
	var count int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM respondents WHERE survey_id = $1`, surveyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count respondents: %w", err)
	}
	return count, nil
}

// SaveRespondent inserts the respondent and links its already stored responses in order.
func (p *RespondentProvider) SaveRespondent(ctx context.Context, respondent domains.Respondent) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
          INSERT INTO respondents (id, survey_id, email, is_anonymous, created_at)
          VALUES ($1, $2, $3, $4, $5)`,
		respondent.ID, respondent.SurveyID, respondent.Email, respondent.IsAnonymous, respondent.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert respondent: %w", err)
	}

	if err := linkResponses(ctx, tx, respondent.ID, 0, respondent.Responses); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit respondent: %w", err)
	}
	return nil
}

// AppendResponses stores new responses and attaches them after the respondent's existing ones.
func (p *RespondentProvider) AppendResponses(ctx context.Context, respondentID string, responses []domains.Response) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var next int
	if err := tx.QueryRow(ctx, `
          SELECT COALESCE(max(position) + 1, 0) FROM respondent_responses
          WHERE respondent_id = $1`, respondentID).Scan(&next); err != nil {
		return fmt.Errorf("select next position: %w", err)
	}

	for _, r := range responses {
		if _, err := tx.Exec(ctx, insertResponse,
			r.ID, r.QuestionID, r.Question, r.QuestionType, nonNil(r.Answer), nonNil(r.Options),
		); err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
	}
	if err := linkResponses(ctx, tx, respondentID, next, responses); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit appended responses: %w", err)
	}
	return nil
}

func linkResponses(ctx context.Context, tx pgx.Tx, respondentID string, from int, responses []domains.Response) error {
	for i, r := range responses {
		if _, err := tx.Exec(ctx, `
              INSERT INTO respondent_responses (respondent_id, response_id, position)
              VALUES ($1, $2, $3)`, respondentID, r.ID, from+i,
		); err != nil {
			return fmt.Errorf("link response: %w", err)
		}
	}
	return nil
}

func (p *RespondentProvider) GetRespondentByID(ctx context.Context, respondentID string) (domains.Respondent, error) {
	var r domains.Respondent
	err := p.db.QueryRow(ctx, `
          SELECT id, survey_id, email, is_anonymous, created_at
          FROM respondents WHERE id = $1`, respondentID,
	).Scan(&r.ID, &r.SurveyID, &r.Email, &r.IsAnonymous, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Respondent{}, storage.ErrNotFound
		}
		return domains.Respondent{}, fmt.Errorf("select respondent: %w", err)
	}

	responses, err := p.responsesOf(ctx, `rr.respondent_id = $1`, respondentID)
	if err != nil {
		return domains.Respondent{}, err
	}
	r.Responses = responses[r.ID]
	if r.Responses == nil {
		r.Responses = []domains.Response{}
	}
	return r, nil
}

// ListRespondentsBySurvey returns respondents in creation order, each with its responses in submission order.
func (p *RespondentProvider) ListRespondentsBySurvey(ctx context.Context, surveyID string) ([]domains.Respondent, error) {
	rows, err := p.db.Query(ctx, `
          SELECT id, survey_id, email, is_anonymous, created_at
          FROM respondents WHERE survey_id = $1
          ORDER BY created_at, id`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("select respondents: %w", err)
	}
	defer rows.Close()

	respondents := make([]domains.Respondent, 0)
	for rows.Next() {
		var r domains.Respondent
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.Email, &r.IsAnonymous, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan respondent: %w", err)
		}
		respondents = append(respondents, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate respondents: %w", err)
	}

	responses, err := p.responsesOf(ctx, `r.survey_id = $1`, surveyID)
	if err != nil {
		return nil, err
	}
	for i := range respondents {
		respondents[i].Responses = responses[respondents[i].ID]
		if respondents[i].Responses == nil {
			respondents[i].Responses = []domains.Response{}
		}
	}
	return respondents, nil
}

func (p *RespondentProvider) responsesOf(ctx context.Context, where string, arg any) (map[string][]domains.Response, error) {
	rows, err := p.db.Query(ctx, `
          SELECT rr.respondent_id, x.id, x.question_id, x.question, x.question_type, x.answer, x.options
          FROM respondent_responses rr
          JOIN respondents r ON r.id = rr.respondent_id
          JOIN responses x ON x.id = rr.response_id
          WHERE `+where+`
          ORDER BY rr.respondent_id, rr.position`, arg)
	if err != nil {
		return nil, fmt.Errorf("select respondent responses: %w", err)
	}
	defer rows.Close()

	byRespondent := make(map[string][]domains.Response)
	for rows.Next() {
		var (
			respondentID string
			x            domains.Response
		)
		if err := rows.Scan(&respondentID, &x.ID, &x.QuestionID, &x.Question, &x.QuestionType, &x.Answer, &x.Options); err != nil {
			return nil, fmt.Errorf("scan respondent response: %w", err)
		}
		byRespondent[respondentID] = append(byRespondent[respondentID], x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate respondent responses: %w", err)
	}
	return byRespondent, nil
}

// ListRespondentTimes returns respondent creation times in arrival order.
func (p *RespondentProvider) ListRespondentTimes(ctx context.Context, surveyID string) ([]time.Time, error) {
	rows, err := p.db.Query(ctx, `
          SELECT created_at FROM respondents
          WHERE survey_id = $1
          ORDER BY created_at, id`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("select respondent times: %w", err)
	}
	times, err := pgx.CollectRows(rows, pgx.RowTo[time.Time])
	if err != nil {
		return nil, fmt.Errorf("collect respondent times: %w", err)
	}
	return times, nil
}
