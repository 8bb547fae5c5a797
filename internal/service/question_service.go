package service

import (
	"context"
	"fmt"

	"surveysphere/internal/domains"

	"github.com/google/uuid"
)

type QuestionService struct {
	provider BlockProvider
	newID    func() string
}

type BlockProvider interface {
	ListBlocksBySurvey(ctx context.Context, surveyID string) ([]domains.Block, error)
	SaveBlocks(ctx context.Context, surveyID string, blocks []domains.Block) error
}

func NewQuestionService(provider BlockProvider) *QuestionService {
	return &QuestionService{
		provider: provider,
		newID:    uuid.NewString,
	}
}

// SaveBlocks stores blocks as a new structure owned by the survey. Incoming ids and counters are discarded.
func (s *QuestionService) SaveBlocks(ctx context.Context, surveyID string, blocks []domains.Block) ([]domains.Block, error) {
	saved := make([]domains.Block, 0, len(blocks))
	for _, b := range blocks {
		block := b.Clone()
		block.ID = s.newID()
		block.SurveyID = surveyID
		for i := range block.Questions {
			q := &block.Questions[i]
			if err := validateQuestion(*q); err != nil {
				return nil, err
			}
			q.ID = s.newID()
			q.BlockID = block.ID
			q.Answered, q.Skipped = 0, 0
		}
		saved = append(saved, block)
	}

	if err := s.provider.SaveBlocks(ctx, surveyID, saved); err != nil {
		return nil, fmt.Errorf("save blocks: %w", err)
	}
	return saved, nil
}

// UpdateBlocks merges blocks into the survey's current structure. Known questions
// keep their counters, unknown question ids fail with ErrQuestionNotFound, and
// everything absent from blocks is dropped from the structure.
func (s *QuestionService) UpdateBlocks(ctx context.Context, surveyID string, blocks []domains.Block) ([]domains.Block, error) {
	current, err := s.provider.ListBlocksBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	knownBlocks := make(map[string]struct{}, len(current))
	knownQuestions := make(map[string]domains.Question)
	for _, b := range current {
		knownBlocks[b.ID] = struct{}{}
		for _, q := range b.Questions {
			knownQuestions[q.ID] = q
		}
	}

	merged := make([]domains.Block, 0, len(blocks))
	for _, b := range blocks {
		block := b.Clone()
		if _, ok := knownBlocks[block.ID]; !ok {
			block.ID = s.newID()
		}
		block.SurveyID = surveyID

		for i := range block.Questions {
			q := &block.Questions[i]
			if err := validateQuestion(*q); err != nil {
				return nil, err
			}
			if q.ID == "" {
				q.ID = s.newID()
				q.Answered, q.Skipped = 0, 0
			} else {
				stored, ok := knownQuestions[q.ID]
				if !ok {
					return nil, fmt.Errorf("question %s: %w", q.ID, ErrQuestionNotFound)
				}
				q.Answered, q.Skipped = stored.Answered, stored.Skipped
			}
			q.BlockID = block.ID
		}
		merged = append(merged, block)
	}

	if err := s.provider.SaveBlocks(ctx, surveyID, merged); err != nil {
		return nil, fmt.Errorf("save blocks: %w", err)
	}
	return merged, nil
}

func (s *QuestionService) ListBlocks(ctx context.Context, surveyID string) ([]domains.Block, error) {
	blocks, err := s.provider.ListBlocksBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

func validateQuestion(q domains.Question) error {
	if _, err := domains.ParseQuestionType(string(q.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestionType, err)
	}
	return nil
}
