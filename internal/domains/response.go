package domains

import (
	"time"
)

type Response struct {
	ID           string   `json:"id"`
	QuestionID   string   `json:"questionId"`
	Question     string   `json:"question"`
	QuestionType string   `json:"questionType"`
	Answer       []string `json:"answer"`
	Options      []string `json:"options"`
}

type Respondent struct {
	ID          string     `json:"id"`
	Email       *string    `json:"email"`
	IsAnonymous bool       `json:"isAnonymous"`
	SurveyID    string     `json:"surveyId"`
	Responses   []Response `json:"responses"`
	CreatedAt   time.Time  `json:"createdDate"`
}

type ResponseSubmission struct {
	SurveyID  string     `json:"surveyId"`
	Email     *string    `json:"email,omitempty"`
	Responses []Response `json:"responses"`
}

type ResponseReceipt struct {
	RespondentID string `json:"respondentId"`
	Message      string `json:"message"`
	Time         string `json:"time"`
}

type AllResponses struct {
	Question     string     `json:"question"`
	QuestionType string     `json:"questionType"`
	Answered     int        `json:"answered"`
	Skipped      int        `json:"skipped"`
	AverageTime  string     `json:"averageTime"`
	Responses    []Response `json:"responses"`
	Options      []string   `json:"options"`
}

type ResponseAnalysis struct {
	ResponseCount     int            `json:"responseCount"`
	Active            bool           `json:"active"`
	Responses         []AllResponses `json:"responses"`
	IndividualResults []Respondent   `json:"individualResults"`
	AverageTime       string         `json:"averageTime"`
}

type SpreadsheetExport struct {
	FileName string
	Content  []byte
}
