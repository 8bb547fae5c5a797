package service

import (
	"context"
	"errors"
	"log/slog"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"
)

type AnalysisService struct {
	surveys     SurveyReader
	blocks      BlockReader
	responses   ResponseReader
	respondents RespondentReader
	timer       AverageTimer
}

type SurveyReader interface {
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
}

type BlockReader interface {
	ListBlocksBySurvey(ctx context.Context, surveyID string) ([]domains.Block, error)
}

type ResponseReader interface {
	ListResponsesByQuestions(ctx context.Context, questionIDs []string) (map[string][]domains.Response, error)
}

type RespondentReader interface {
	ListRespondentsBySurvey(ctx context.Context, surveyID string) ([]domains.Respondent, error)
}

type AverageTimer interface {
	AverageTimeBySurvey(ctx context.Context, surveyID string) (string, error)
}

func NewAnalysisService(surveys SurveyReader, blocks BlockReader, responses ResponseReader, respondents RespondentReader, timer AverageTimer) *AnalysisService {
	return &AnalysisService{
		surveys:     surveys,
		blocks:      blocks,
		responses:   responses,
		respondents: respondents,
		timer:       timer,
	}
}

// GetResponses builds the analysis view of a survey. It never writes.
func (s *AnalysisService) GetResponses(ctx context.Context, surveyID string) (domains.ResponseAnalysis, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.ResponseAnalysis{}, ErrSurveyNotFound
		}
		slog.Error("GetResponses: load survey failed", "err", err, "survey_id", surveyID)
		return domains.ResponseAnalysis{}, err
	}
	if survey.Deleted {
		return domains.ResponseAnalysis{}, ErrSurveyNotFound
	}

	blocks, err := s.blocks.ListBlocksBySurvey(ctx, survey.ID)
	if err != nil {
		slog.Error("GetResponses: load blocks failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseAnalysis{}, err
	}

	var questions []domains.Question
	for _, b := range blocks {
		questions = append(questions, b.Questions...)
	}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}

	byQuestion, err := s.responses.ListResponsesByQuestions(ctx, ids)
	if err != nil {
		slog.Error("GetResponses: load responses failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseAnalysis{}, err
	}

	rollups := make([]domains.AllResponses, 0, len(questions))
	for _, q := range questions {
		responses := byQuestion[q.ID]
		if responses == nil {
			responses = []domains.Response{}
		}
		rollups = append(rollups, domains.AllResponses{
			Question:     q.Title,
			QuestionType: string(q.Type),
			Answered:     q.Answered,
			Skipped:      q.Skipped,
			Responses:    responses,
			Options:      append([]string{}, q.Options...),
		})
	}

	respondents, err := s.respondents.ListRespondentsBySurvey(ctx, survey.ID)
	if err != nil {
		slog.Error("GetResponses: load respondents failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseAnalysis{}, err
	}
	averageTime, err := s.timer.AverageTimeBySurvey(ctx, survey.ID)
	if err != nil {
		slog.Error("GetResponses: average time failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseAnalysis{}, err
	}

	return domains.ResponseAnalysis{
		ResponseCount:     len(respondents),
		Active:            survey.Active,
		Responses:         rollups,
		IndividualResults: respondents,
		AverageTime:       averageTime,
	}, nil
}
