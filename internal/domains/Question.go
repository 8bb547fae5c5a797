package domains

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	ShortText      QuestionType = "short-text"
	MultipleChoice QuestionType = "multiple-choice"
	SingleChoice   QuestionType = "single-choice"
	Dropdown       QuestionType = "dropdown"
	Paragraph      QuestionType = "paragraph"
)

func ParseQuestionType(raw string) (QuestionType, error) {
	switch t := QuestionType(raw); t {
	case ShortText, MultipleChoice, SingleChoice, Dropdown, Paragraph:
		return t, nil
	default:
		return "", fmt.Errorf("unknown question type %q", raw)
	}
}

func (t *QuestionType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseQuestionType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Condition is a branching rule evaluated by the survey renderer.
type Condition struct {
	BlockIndex         int      `json:"blockIndex"`
	QuestionIndex      int      `json:"questionIndex"`
	Choice             string   `json:"choice"`
	Question           string   `json:"question"`
	ConditionalOptions []string `json:"conditionalOptions"`
	Type               string   `json:"type"`
	Answer             string   `json:"answer"`
}

func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}
	cp := *c
	cp.ConditionalOptions = append([]string(nil), c.ConditionalOptions...)
	return &cp
}

type Question struct {
	ID        string       `json:"id"`
	BlockID   string       `json:"-"`
	Title     string       `json:"title"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Options   []string     `json:"options"`
	Condition *Condition   `json:"conditions,omitempty"`
	Answered  int          `json:"answered"`
	Skipped   int          `json:"skipped"`
}

// Clone returns a deep copy so blocks never share mutable state across surveys.
func (q Question) Clone() Question {
	cp := q
	cp.Options = append([]string{}, q.Options...)
	cp.Condition = q.Condition.Clone()
	return cp
}

type Block struct {
	ID        string     `json:"id"`
	SurveyID  string     `json:"-"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

func (b Block) Clone() Block {
	cp := b
	cp.Questions = make([]Question, 0, len(b.Questions))
	for _, q := range b.Questions {
		cp.Questions = append(cp.Questions, q.Clone())
	}
	return cp
}
