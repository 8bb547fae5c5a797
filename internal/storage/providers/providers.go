package providers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the part of *pgxpool.Pool the providers use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ DB = (*pgxpool.Pool)(nil)

type Providers struct {
	UserProvider       *UserProvider
	SurveyProvider     *SurveyProvider
	QuestionProvider   *QuestionProvider
	ResponseProvider   *ResponseProvider
	RespondentProvider *RespondentProvider
	ScheduleProvider   *ScheduleProvider
	DashboardProvider  *DashboardProvider
}

func New(db DB) *Providers {
	return &Providers{
		UserProvider:       NewUserProvider(db),
		SurveyProvider:     NewSurveyProvider(db),
		QuestionProvider:   NewQuestionProvider(db),
		ResponseProvider:   NewResponseProvider(db),
		RespondentProvider: NewRespondentProvider(db),
		ScheduleProvider:   NewScheduleProvider(db),
		DashboardProvider:  NewDashboardProvider(db),
	}
}
