package providers

import (
	"context"
	"fmt"
	"time"

	"surveysphere/internal/domains"
)

type DashboardProvider struct {
	db DB
}

func NewDashboardProvider(db DB) *DashboardProvider {
	return &DashboardProvider{
		db: db,
	}
}

// DashboardCounts totals live surveys, templates and accounts. Deleted surveys are
// not counted.
func (p *DashboardProvider) DashboardCounts(ctx context.Context, since time.Time) (domains.DashboardCounts, error) {
	var c domains.DashboardCounts
	if err := p.db.QueryRow(ctx, `
          SELECT
              (SELECT count(*) FROM surveys WHERE NOT deleted AND NOT template),
              (SELECT count(*) FROM surveys WHERE NOT deleted AND NOT template AND created_at >= $1),
              (SELECT count(*) FROM surveys WHERE NOT deleted AND template),
              (SELECT count(*) FROM surveys WHERE NOT deleted AND template AND created_at >= $1),
              (SELECT count(*) FROM accounts),
              (SELECT count(*) FROM accounts WHERE created_at >= $1),
              (SELECT count(*) FROM accounts WHERE NOT active)`, since.UTC(),
	).Scan(&c.TotalSurveys, &c.SurveysSince, &c.TotalTemplates, &c.TemplatesSince,
		&c.TotalUsers, &c.UsersSince, &c.DeactivatedUsers); err != nil {
		return domains.DashboardCounts{}, fmt.Errorf("select dashboard counts: %w", err)
	}

	rows, err := p.db.Query(ctx, `SELECT role, count(*) FROM accounts GROUP BY role ORDER BY role`)
	if err != nil {
		return domains.DashboardCounts{}, fmt.Errorf("select role counts: %w", err)
	}
	defer rows.Close()

	c.UsersByRole = make(map[domains.Role]int64)
	for rows.Next() {
		var (
			role string
			n    int64
		)
		if err := rows.Scan(&role, &n); err != nil {
			return domains.DashboardCounts{}, fmt.Errorf("scan role count: %w", err)
		}
		parsed, err := domains.ParseRole(role)
		if err != nil {
			return domains.DashboardCounts{}, err
		}
		c.UsersByRole[parsed] = n
	}
	if err := rows.Err(); err != nil {
		return domains.DashboardCounts{}, fmt.Errorf("iterate role counts: %w", err)
	}
	return c, nil
}
