package providers

import (
	"context"
	"errors"
	"fmt"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/jackc/pgx/v5"
)

type SurveyProvider struct {
	db DB
}

func NewSurveyProvider(db DB) *SurveyProvider {
	return &SurveyProvider{
		db: db,
	}
}

const surveyColumns = `s.id, s.owner_id, s.title, s.category, s.survey_link,
       s.active, s.sent, s.archived, s.deleted, s.deactivated, s.template,
       s.respondent_count, s.created_at`

func scanSurvey(row pgx.Row) (domains.Survey, error) {
	var s domains.Survey
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.Category, &s.Link,
		&s.Active, &s.Sent, &s.Archived, &s.Deleted, &s.Deactivated, &s.Template,
		&s.RespondentCount, &s.CreatedAt,
	)
	return s, err
}

func (s *SurveyProvider) SaveSurvey(ctx context.Context, survey domains.SurveyToSave) (domains.Survey, error) {
	row := s.db.QueryRow(ctx, `
          INSERT INTO surveys AS s (id, owner_id, title, category, survey_link, template)
          VALUES ($1, $2, $3, $4, $5, $6)
          RETURNING `+surveyColumns,
		survey.ID, survey.OwnerID, survey.Title, survey.Category, survey.Link, survey.Template,
	)
	created, err := scanSurvey(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domains.Survey{}, storage.ErrConflict
		}
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	return created, nil
}

func (s *SurveyProvider) UpdateSurveyDetails(ctx context.Context, surveyID, title, category string) error {
	tag, err := s.db.Exec(ctx, `
          UPDATE surveys SET title = $2, category = $3, updated_at = now()
          WHERE id = $1`, surveyID, title, category)
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetSurveyByID returns the survey row without its blocks. Deleted surveys are returned as is.
func (s *SurveyProvider) GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error) {
	row := s.db.QueryRow(ctx, `SELECT `+surveyColumns+` FROM surveys s WHERE s.id = $1`, surveyID)
	survey, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, storage.ErrNotFound
		}
		return domains.Survey{}, fmt.Errorf("select survey: %w", err)
	}
	return survey, nil
}

func (s *SurveyProvider) SaveSurveyStats(ctx context.Context, surveyID string, stats domains.SurveyStats) error {
	tag, err := s.db.Exec(ctx, `
          UPDATE surveys SET sent = $2, respondent_count = $3, updated_at = now()
          WHERE id = $1`, surveyID, stats.Sent, stats.RespondentCount)
	if err != nil {
		return fmt.Errorf("update survey stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetSurveyFlags updates only the flags that are set.
func (s *SurveyProvider) SetSurveyFlags(ctx context.Context, surveyID string, flags domains.SurveyFlags) error {
	tag, err := s.db.Exec(ctx, `
          UPDATE surveys SET
              active      = COALESCE($2, active),
              sent        = COALESCE($3, sent),
              archived    = COALESCE($4, archived),
              deleted     = COALESCE($5, deleted),
              deactivated = COALESCE($6, deactivated),
              updated_at  = now()
          WHERE id = $1`,
		surveyID, flags.Active, flags.Sent, flags.Archived, flags.Deleted, flags.Deactivated,
	)
	if err != nil {
		return fmt.Errorf("update survey flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func ownerTabFilter(tab string) (string, error) {
	switch tab {
	case domains.SurveyTabSent:
		return `s.sent AND NOT s.archived`, nil
	case domains.SurveyTabDraft:
		return `NOT s.sent AND NOT s.archived`, nil
	case domains.SurveyTabArchived:
		return `s.archived`, nil
	case domains.SurveyTabScheduled:
		return `EXISTS (SELECT 1 FROM scheduled_surveys ss WHERE ss.survey_id = s.id AND NOT ss.completed)`, nil
	default:
		return "", fmt.Errorf("unknown survey tab %q", tab)
	}
}

func (s *SurveyProvider) ListSurveysByOwner(ctx context.Context, ownerID, tab string, limit, offset int) ([]domains.Survey, int, error) {
	filter, err := ownerTabFilter(tab)
	if err != nil {
		return nil, 0, err
	}
	where := ` FROM surveys s WHERE s.owner_id = $1 AND NOT s.deleted AND NOT s.deactivated AND ` + filter
	return s.listPage(ctx, where, limit, offset, ownerID)
}

func (s *SurveyProvider) ListTemplates(ctx context.Context, deactivated bool, limit, offset int) ([]domains.Survey, int, error) {
	where := ` FROM surveys s WHERE s.template AND NOT s.deleted AND s.deactivated = $1`
	return s.listPage(ctx, where, limit, offset, deactivated)
}

func (s *SurveyProvider) listPage(ctx context.Context, where string, limit, offset int, arg any) ([]domains.Survey, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*)`+where, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count surveys: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+surveyColumns+where+` ORDER BY s.created_at DESC, s.id LIMIT $2 OFFSET $3`,
		arg, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select surveys: %w", err)
	}
	defer rows.Close()

	surveys := make([]domains.Survey, 0, limit)
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, survey)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate surveys: %w", err)
	}
	return surveys, total, nil
}
