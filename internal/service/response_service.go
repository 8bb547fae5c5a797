package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/google/uuid"
)

const responseRecordedMessage = "Response recorded successfully"

type ResponseService struct {
	surveys     ResponseSurveyProvider
	respondents RespondentProvider
	responses   ResponseWriter
	questions   QuestionCounterProvider
	users       UserLookup

	now   func() time.Time
	newID func() string
}

type ResponseSurveyProvider interface {
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
	SaveSurveyStats(ctx context.Context, surveyID string, stats domains.SurveyStats) error
}

type RespondentProvider interface {
	CountRespondentsBySurvey(ctx context.Context, surveyID string) (int64, error)
	GetRespondentByID(ctx context.Context, respondentID string) (domains.Respondent, error)
	SaveRespondent(ctx context.Context, respondent domains.Respondent) error
	AppendResponses(ctx context.Context, respondentID string, responses []domains.Response) error
}

type ResponseWriter interface {
	SaveResponses(ctx context.Context, responses []domains.Response) error
}

type QuestionCounterProvider interface {
	ListBlocksBySurvey(ctx context.Context, surveyID string) ([]domains.Block, error)
	IncrementQuestionCounters(ctx context.Context, questionID string, answered, skipped int) error
}

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (domains.User, error)
}

func NewResponseService(
	surveys ResponseSurveyProvider,
	respondents RespondentProvider,
	responses ResponseWriter,
	questions QuestionCounterProvider,
	users UserLookup,
) *ResponseService {
	return &ResponseService{
		surveys:     surveys,
		respondents: respondents,
		responses:   responses,
		questions:   questions,
		users:       users,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// RecordResponse stores one submission. The survey's sent flag and respondent count
// are written before the active check, so a rejected submission still updates them.
// A respondentID that resolves to a respondent of the same survey appends to it without
// touching question counters. Every question id must belong to the survey.
func (s *ResponseService) RecordResponse(ctx context.Context, submission domains.ResponseSubmission, respondentID string, principal *domains.Principal) (domains.ResponseReceipt, error) {
	if strings.TrimSpace(submission.SurveyID) == "" {
		return domains.ResponseReceipt{}, ErrSurveyIDRequired
	}

	survey, err := s.surveys.GetSurveyByID(ctx, submission.SurveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.ResponseReceipt{}, ErrSurveyNotFound
		}
		slog.Error("RecordResponse: load survey failed", "err", err, "survey_id", submission.SurveyID)
		return domains.ResponseReceipt{}, err
	}
	if survey.Deleted {
		return domains.ResponseReceipt{}, ErrSurveyNotFound
	}

	count, err := s.respondents.CountRespondentsBySurvey(ctx, survey.ID)
	if err != nil {
		slog.Error("RecordResponse: count respondents failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseReceipt{}, err
	}
	count++
	if count < 1 {
		count = 1
	}
	if err := s.surveys.SaveSurveyStats(ctx, survey.ID, domains.SurveyStats{Sent: true, RespondentCount: count}); err != nil {
		slog.Error("RecordResponse: save survey stats failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseReceipt{}, err
	}

	if !survey.Active {
		return domains.ResponseReceipt{}, ErrSurveyNotTakingResponses
	}

	if err := s.checkQuestions(ctx, survey.ID, submission.Responses); err != nil {
		return domains.ResponseReceipt{}, err
	}
	responses := s.prepareResponses(submission.Responses)

	if respondentID != "" {
		existing, err := s.respondents.GetRespondentByID(ctx, respondentID)
		switch {
		case err == nil && existing.SurveyID != survey.ID:
			slog.Warn("RecordResponse: respondent belongs to another survey", "respondent_id", respondentID, "survey_id", survey.ID)
		case err == nil:
			if err := s.respondents.AppendResponses(ctx, existing.ID, responses); err != nil {
				slog.Error("RecordResponse: append responses failed", "err", err, "respondent_id", existing.ID)
				return domains.ResponseReceipt{}, err
			}
			return receipt(existing), nil
		case !errors.Is(err, storage.ErrNotFound):
			slog.Error("RecordResponse: load respondent failed", "err", err, "respondent_id", respondentID)
			return domains.ResponseReceipt{}, err
		}
	}

	if err := s.responses.SaveResponses(ctx, responses); err != nil {
		slog.Error("RecordResponse: save responses failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseReceipt{}, err
	}
	for _, r := range responses {
		answered, skipped := answerCounters(r.Answer)
		if err := s.questions.IncrementQuestionCounters(ctx, r.QuestionID, answered, skipped); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return domains.ResponseReceipt{}, fmt.Errorf("question %s: %w", r.QuestionID, ErrQuestionNotFound)
			}
			slog.Error("RecordResponse: update question counters failed", "err", err, "question_id", r.QuestionID)
			return domains.ResponseReceipt{}, err
		}
	}

	email, anonymous, err := s.resolveIdentity(ctx, submission.Email, principal)
	if err != nil {
		slog.Error("RecordResponse: resolve respondent failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseReceipt{}, err
	}

	respondent := domains.Respondent{
		ID:          s.newID(),
		Email:       email,
		IsAnonymous: anonymous,
		SurveyID:    survey.ID,
		Responses:   responses,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.respondents.SaveRespondent(ctx, respondent); err != nil {
		slog.Error("RecordResponse: save respondent failed", "err", err, "survey_id", survey.ID)
		return domains.ResponseReceipt{}, err
	}

	slog.Info("response recorded", "survey_id", survey.ID, "respondent_id", respondent.ID, "anonymous", anonymous)
	return receipt(respondent), nil
}

// checkQuestions rejects responses whose question is not part of the survey.
func (s *ResponseService) checkQuestions(ctx context.Context, surveyID string, responses []domains.Response) error {
	blocks, err := s.questions.ListBlocksBySurvey(ctx, surveyID)
	if err != nil {
		slog.Error("RecordResponse: load questions failed", "err", err, "survey_id", surveyID)
		return err
	}
	known := make(map[string]struct{})
	for _, b := range blocks {
		for _, q := range b.Questions {
			known[q.ID] = struct{}{}
		}
	}
	for _, r := range responses {
		if _, ok := known[r.QuestionID]; !ok {
			return fmt.Errorf("question %s: %w", r.QuestionID, ErrQuestionNotFound)
		}
	}
	return nil
}

func receipt(r domains.Respondent) domains.ResponseReceipt {
	return domains.ResponseReceipt{
		RespondentID: r.ID,
		Message:      responseRecordedMessage,
		Time:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// prepareResponses copies submitted responses under fresh ids.
func (s *ResponseService) prepareResponses(submitted []domains.Response) []domains.Response {
	responses := make([]domains.Response, 0, len(submitted))
	for _, r := range submitted {
		responses = append(responses, domains.Response{
			ID:           s.newID(),
			QuestionID:   r.QuestionID,
			Question:     r.Question,
			QuestionType: r.QuestionType,
			Answer:       append([]string{}, r.Answer...),
			Options:      append([]string{}, r.Options...),
		})
	}
	return responses
}

// answerCounters returns (0,1) when every entry is blank, including no entries,
// (1,0) when every entry is non-blank, and (0,0) for a mix.
func answerCounters(answer []string) (answered, skipped int) {
	blank := 0
	for _, a := range answer {
		if strings.TrimSpace(a) == "" {
			blank++
		}
	}
	switch {
	case blank == len(answer):
		return 0, 1
	case blank == 0:
		return 1, 0
	default:
		return 0, 0
	}
}

func (s *ResponseService) resolveIdentity(ctx context.Context, email *string, principal *domains.Principal) (*string, bool, error) {
	if email != nil && strings.TrimSpace(*email) != "" {
		user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(*email))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, true, nil
			}
			return nil, false, err
		}
		canonical := user.Email
		return &canonical, false, nil
	}
	if principal != nil && principal.Email != "" {
		login := principal.Email
		return &login, false, nil
	}
	return nil, true, nil
}
