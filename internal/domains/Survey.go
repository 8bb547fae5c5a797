package domains

import (
	"time"
)

type Survey struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Link            string    `json:"surveyLink"`
	Blocks          []Block   `json:"blocks"`
	Active          bool      `json:"active"`
	Sent            bool      `json:"sent"`
	Archived        bool      `json:"archived"`
	Deleted         bool      `json:"deleted"`
	Deactivated     bool      `json:"deactivated"`
	Template        bool      `json:"template"`
	RespondentCount int64     `json:"respondentCount"`
	CreatedAt       time.Time `json:"-"`
}

type SurveyCreate struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Blocks   []Block `json:"blocks"`
}

type SurveyToSave struct {
	ID       string
	OwnerID  string
	Title    string
	Category string
	Link     string
	Template bool
}

// SurveyStats is the part of a survey the response recorder writes back.
type SurveyStats struct {
	Sent            bool
	RespondentCount int64
}

type SurveyFlags struct {
	Active      *bool
	Sent        *bool
	Archived    *bool
	Deleted     *bool
	Deactivated *bool
}

const (
	SurveyTabSent      = "sent"
	SurveyTabDraft     = "draft"
	SurveyTabArchived  = "archived"
	SurveyTabScheduled = "scheduled"

	TemplateTabAll         = "all"
	TemplateTabDeactivated = "deactivated"
)

type SurveyPage struct {
	Items       []Survey `json:"surveys"`
	CurrentPage int      `json:"currentPage"`
	TotalPages  int      `json:"totalPages"`
	TotalItems  int      `json:"totalItems"`
}

type SurveyDistribution struct {
	SurveyID string   `json:"surveyId"`
	Emails   []string `json:"emails"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

type DistributionResult struct {
	Message string `json:"message"`
}

const (
	ScheduleDistribute = "distribute"
	ScheduleDelete     = "delete"
	ScheduleArchive    = "archive"
)

// ScheduleDateLayout is the wire format of SurveySchedule.ScheduleDate.
const ScheduleDateLayout = "2006-01-02 15:04"

type SurveySchedule struct {
	ScheduleDate string             `json:"scheduleDate"`
	SharingInfo  SurveyDistribution `json:"sharingInfo"`
}

type ScheduledSurvey struct {
	ID            string    `json:"id"`
	SurveyID      string    `json:"surveyId"`
	Action        string    `json:"action"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Subject       string    `json:"subject,omitempty"`
	Message       string    `json:"message,omitempty"`
	Emails        []string  `json:"emails,omitempty"`
	SentEmails    []string  `json:"sentEmails,omitempty"`
	Completed     bool      `json:"isCompleted"`
}
