package providers

import (
	"context"
	"fmt"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"
)

type ScheduleProvider struct {
	db DB
}

func NewScheduleProvider(db DB) *ScheduleProvider {
	return &ScheduleProvider{
		db: db,
	}
}

func (p *ScheduleProvider) SaveSchedule(ctx context.Context, schedule domains.ScheduledSurvey) error {
	if _, err := p.db.Exec(ctx, `
          INSERT INTO scheduled_surveys (id, survey_id, action, scheduled_date, subject, message, emails, completed)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schedule.ID, schedule.SurveyID, schedule.Action, schedule.ScheduledDate.UTC(),
		schedule.Subject, schedule.Message, nonNil(schedule.Emails), schedule.Completed,
	); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (p *ScheduleProvider) HasPendingSchedule(ctx context.Context, surveyID, action string) (bool, error) {
	var exists bool
	if err := p.db.QueryRow(ctx, `
          SELECT EXISTS (
              SELECT 1 FROM scheduled_surveys
              WHERE survey_id = $1 AND action = $2 AND NOT completed
          )`, surveyID, action).Scan(&exists); err != nil {
		return false, fmt.Errorf("select pending schedule: %w", err)
	}
	return exists, nil
}

// ListDueSchedules returns pending schedules of the action whose date is not after now, oldest first.
func (p *ScheduleProvider) ListDueSchedules(ctx context.Context, action string, now time.Time) ([]domains.ScheduledSurvey, error) {
	rows, err := p.db.Query(ctx, `
          SELECT id, survey_id, action, scheduled_date, subject, message, emails, sent_emails, completed
          FROM scheduled_surveys
          WHERE action = $1 AND NOT completed AND scheduled_date <= $2
          ORDER BY scheduled_date, id`, action, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("select due schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]domains.ScheduledSurvey, 0)
	for rows.Next() {
		var s domains.ScheduledSurvey
		if err := rows.Scan(&s.ID, &s.SurveyID, &s.Action, &s.ScheduledDate, &s.Subject, &s.Message, &s.Emails, &s.SentEmails, &s.Completed); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return schedules, nil
}

func (p *ScheduleProvider) CompleteSchedule(ctx context.Context, scheduleID string) error {
	tag, err := p.db.Exec(ctx, `UPDATE scheduled_surveys SET completed = true WHERE id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("complete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkEmailSent records a delivered recipient of a distribute schedule once.
func (p *ScheduleProvider) MarkEmailSent(ctx context.Context, scheduleID, email string) error {
	tag, err := p.db.Exec(ctx, `
          UPDATE scheduled_surveys
          SET sent_emails = CASE WHEN $2 = ANY(sent_emails) THEN sent_emails ELSE array_append(sent_emails, $2) END
          WHERE id = $1`, scheduleID, email)
	if err != nil {
		return fmt.Errorf("mark schedule email sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
