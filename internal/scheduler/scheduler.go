package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"
)

type ScheduleProvider interface {
	ListDueSchedules(ctx context.Context, action string, now time.Time) ([]domains.ScheduledSurvey, error)
	CompleteSchedule(ctx context.Context, scheduleID string) error
	MarkEmailSent(ctx context.Context, scheduleID, email string) error
}

type SurveyProvider interface {
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
	SetSurveyFlags(ctx context.Context, surveyID string, flags domains.SurveyFlags) error
}

type Mailer interface {
	SendSurvey(ctx context.Context, email, subject, message, surveyLink string) error
}

// SurveyScheduler runs due distribute, delete and archive schedules on every tick.
// A schedule whose survey is missing or deleted stays pending.
type SurveyScheduler struct {
	schedules ScheduleProvider
	surveys   SurveyProvider
	mailer    Mailer
	interval  time.Duration
	now       func() time.Time
}

func NewSurveyScheduler(schedules ScheduleProvider, surveys SurveyProvider, mailer Mailer, interval time.Duration) *SurveyScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SurveyScheduler{
		schedules: schedules,
		surveys:   surveys,
		mailer:    mailer,
		interval:  interval,
		now:       time.Now,
	}
}

func (s *SurveyScheduler) Start(ctx context.Context) {
	if s.schedules == nil || s.surveys == nil {
		slog.Warn("survey scheduler skipped: no provider configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *SurveyScheduler) run(ctx context.Context) {
	now := s.now().UTC()
	s.process(ctx, domains.ScheduleDistribute, now, s.distribute)
	s.process(ctx, domains.ScheduleDelete, now, s.flag(domains.SurveyFlags{Deleted: boolPtr(true)}))
	s.process(ctx, domains.ScheduleArchive, now, s.flag(domains.SurveyFlags{Archived: boolPtr(true)}))
}

type job func(ctx context.Context, schedule domains.ScheduledSurvey, survey domains.Survey) (bool, error)

func (s *SurveyScheduler) process(ctx context.Context, action string, now time.Time, run job) {
	due, err := s.schedules.ListDueSchedules(ctx, action, now)
	if err != nil {
		slog.Error("list due schedules failed", "err", err, "action", action)
		return
	}

	completed := 0
	for _, schedule := range due {
		survey, err := s.surveys.GetSurveyByID(ctx, schedule.SurveyID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				slog.Error("load scheduled survey failed", "err", err, "schedule_id", schedule.ID)
			}
			continue
		}
		if survey.Deleted {
			continue
		}

		done, err := run(ctx, schedule, survey)
		if err != nil {
			slog.Error("scheduled action failed", "err", err, "action", action, "schedule_id", schedule.ID, "survey_id", survey.ID)
			continue
		}
		if !done {
			continue
		}
		if err := s.schedules.CompleteSchedule(ctx, schedule.ID); err != nil {
			slog.Error("complete schedule failed", "err", err, "schedule_id", schedule.ID)
			continue
		}
		completed++
	}
	if completed > 0 {
		slog.Info("scheduled surveys processed", "action", action, "count", completed)
	}
}

// distribute mails every recipient not yet recorded as sent, so a run that fails
// partway resumes with the remaining addresses on the next tick.
func (s *SurveyScheduler) distribute(ctx context.Context, schedule domains.ScheduledSurvey, survey domains.Survey) (bool, error) {
	if len(schedule.Emails) == 0 {
		return false, nil
	}
	sent := make(map[string]struct{}, len(schedule.SentEmails))
	for _, email := range schedule.SentEmails {
		sent[email] = struct{}{}
	}
	for _, email := range schedule.Emails {
		if _, ok := sent[email]; ok {
			continue
		}
		if err := s.mailer.SendSurvey(ctx, email, schedule.Subject, schedule.Message, survey.Link); err != nil {
			return false, err
		}
		if err := s.schedules.MarkEmailSent(ctx, schedule.ID, email); err != nil {
			return false, err
		}
		sent[email] = struct{}{}
	}
	if err := s.surveys.SetSurveyFlags(ctx, survey.ID, domains.SurveyFlags{Sent: boolPtr(true)}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SurveyScheduler) flag(flags domains.SurveyFlags) job {
	return func(ctx context.Context, _ domains.ScheduledSurvey, survey domains.Survey) (bool, error) {
		if err := s.surveys.SetSurveyFlags(ctx, survey.ID, flags); err != nil {
			return false, err
		}
		return true, nil
	}
}

func boolPtr(v bool) *bool {
	return &v
}
