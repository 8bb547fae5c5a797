package service

import (
	"context"
	"fmt"
	"time"
)

type TimeService struct {
	provider RespondentTimeProvider
}

type RespondentTimeProvider interface {
	ListRespondentTimes(ctx context.Context, surveyID string) ([]time.Time, error)
}

func NewTimeService(provider RespondentTimeProvider) *TimeService {
	return &TimeService{
		provider: provider,
	}
}

func (s *TimeService) AverageTimeBySurvey(ctx context.Context, surveyID string) (string, error) {
	times, err := s.provider.ListRespondentTimes(ctx, surveyID)
	if err != nil {
		return "", fmt.Errorf("list respondent times: %w", err)
	}
	return AverageTime(times), nil
}

// AverageTime sums, in arrival order, each timestamp's offset from the smallest
// timestamp seen so far, divides by the count in whole seconds and adds the result
// to the final minimum. The result is formatted HH:mm in UTC, or "" for no input.
func AverageTime(times []time.Time) string {
	if len(times) == 0 {
		return ""
	}

	minTime := times[0].UTC()
	var total time.Duration
	for _, t := range times {
		t = t.UTC()
		if t.Before(minTime) {
			minTime = t
		}
		total += t.Sub(minTime)
	}

	avg := int64(total/time.Second) / int64(len(times))
	return minTime.Add(time.Duration(avg) * time.Second).Format("15:04")
}
