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

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPageNumber    = 1_000_000
)

type SurveyService struct {
	provider       SurveyProvider
	blocks         BlockStore
	schedules      ScheduleProvider
	mailer         Mailer
	frontendOrigin string
	newID          func() string
}

type SurveyProvider interface {
	SaveSurvey(ctx context.Context, survey domains.SurveyToSave) (domains.Survey, error)
	UpdateSurveyDetails(ctx context.Context, surveyID, title, category string) error
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
	SetSurveyFlags(ctx context.Context, surveyID string, flags domains.SurveyFlags) error
	ListSurveysByOwner(ctx context.Context, ownerID, tab string, limit, offset int) ([]domains.Survey, int, error)
	ListTemplates(ctx context.Context, deactivated bool, limit, offset int) ([]domains.Survey, int, error)
}

type BlockStore interface {
	SaveBlocks(ctx context.Context, surveyID string, blocks []domains.Block) ([]domains.Block, error)
	UpdateBlocks(ctx context.Context, surveyID string, blocks []domains.Block) ([]domains.Block, error)
	ListBlocks(ctx context.Context, surveyID string) ([]domains.Block, error)
}

type ScheduleProvider interface {
	SaveSchedule(ctx context.Context, schedule domains.ScheduledSurvey) error
	HasPendingSchedule(ctx context.Context, surveyID, action string) (bool, error)
}

type Mailer interface {
	SendSurvey(ctx context.Context, email, subject, message, surveyLink string) error
}

func NewSurveyService(provider SurveyProvider, blocks BlockStore, schedules ScheduleProvider, mailer Mailer, frontendOrigin string) *SurveyService {
	return &SurveyService{
		provider:       provider,
		blocks:         blocks,
		schedules:      schedules,
		mailer:         mailer,
		frontendOrigin: strings.TrimRight(frontendOrigin, "/"),
		newID:          uuid.NewString,
	}
}

func (h *SurveyService) CreateSurvey(ctx context.Context, principal domains.Principal, payload domains.SurveyCreate) (domains.Survey, error) {
	id := h.newID()
	created, err := h.provider.SaveSurvey(ctx, domains.SurveyToSave{
		ID:       id,
		OwnerID:  principal.UserID,
		Title:    payload.Title,
		Category: payload.Category,
		Link:     h.frontendOrigin + "/survey/" + id,
		Template: principal.Role.IsAdmin(),
	})
	if err != nil {
		slog.Error("CreateSurvey: save survey failed", "err", err, "owner_id", principal.UserID)
		return domains.Survey{}, err
	}

	blocks, err := h.blocks.SaveBlocks(ctx, created.ID, payload.Blocks)
	if err != nil {
		slog.Error("CreateSurvey: save blocks failed", "err", err, "survey_id", created.ID)
		return domains.Survey{}, err
	}
	created.Blocks = blocks

	slog.Info("survey created", "survey_id", created.ID, "owner_id", created.OwnerID, "template", created.Template)
	return created, nil
}

func (h *SurveyService) UpdateSurvey(ctx context.Context, principal domains.Principal, surveyID string, payload domains.SurveyCreate) (domains.Survey, error) {
	survey, err := h.managedSurvey(ctx, principal, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}

	if err := h.provider.UpdateSurveyDetails(ctx, survey.ID, payload.Title, payload.Category); err != nil {
		slog.Error("UpdateSurvey: update details failed", "err", err, "survey_id", survey.ID)
		return domains.Survey{}, err
	}
	blocks, err := h.blocks.UpdateBlocks(ctx, survey.ID, payload.Blocks)
	if err != nil {
		return domains.Survey{}, err
	}

	survey.Title = payload.Title
	survey.Category = payload.Category
	survey.Blocks = blocks
	return survey, nil
}

// GetSurvey returns a survey with its blocks. Deleted surveys are reported as missing.
func (h *SurveyService) GetSurvey(ctx context.Context, surveyID string) (domains.Survey, error) {
	survey, err := h.liveSurvey(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	blocks, err := h.blocks.ListBlocks(ctx, survey.ID)
	if err != nil {
		slog.Error("GetSurvey: load blocks failed", "err", err, "survey_id", survey.ID)
		return domains.Survey{}, err
	}
	survey.Blocks = blocks
	return survey, nil
}

// AuthorizeOwner fails unless the principal owns the survey or is an admin.
func (h *SurveyService) AuthorizeOwner(ctx context.Context, principal domains.Principal, surveyID string) error {
	_, err := h.managedSurvey(ctx, principal, surveyID)
	return err
}

func (h *SurveyService) ListSurveys(ctx context.Context, principal domains.Principal, tab string, page, limit int) (domains.SurveyPage, error) {
	return h.listOwned(ctx, principal.UserID, tab, page, limit)
}

// ListUserSurveys lets an admin page through the surveys of any account.
func (h *SurveyService) ListUserSurveys(ctx context.Context, principal domains.Principal, ownerID, tab string, page, limit int) (domains.SurveyPage, error) {
	if !principal.Role.IsAdmin() {
		return domains.SurveyPage{}, ErrForbidden
	}
	return h.listOwned(ctx, ownerID, tab, page, limit)
}

func (h *SurveyService) listOwned(ctx context.Context, ownerID, tab string, page, limit int) (domains.SurveyPage, error) {
	switch tab {
	case domains.SurveyTabSent, domains.SurveyTabDraft, domains.SurveyTabArchived, domains.SurveyTabScheduled:
	case "":
		tab = domains.SurveyTabSent
	default:
		return domains.SurveyPage{}, fmt.Errorf("%w %q", ErrInvalidTab, tab)
	}

	page, limit, offset := normalizePage(page, limit)
	surveys, total, err := h.provider.ListSurveysByOwner(ctx, ownerID, tab, limit, offset)
	if err != nil {
		slog.Error("ListSurveys failed", "err", err, "owner_id", ownerID, "tab", tab)
		return domains.SurveyPage{}, err
	}
	return newSurveyPage(surveys, page, limit, total), nil
}

func (h *SurveyService) ListTemplates(ctx context.Context, tab string, page, limit int) (domains.SurveyPage, error) {
	var deactivated bool
	switch strings.ToLower(tab) {
	case "", domains.TemplateTabAll:
	case domains.TemplateTabDeactivated:
		deactivated = true
	default:
		return domains.SurveyPage{}, fmt.Errorf("%w %q", ErrInvalidTab, tab)
	}

	page, limit, offset := normalizePage(page, limit)
	templates, total, err := h.provider.ListTemplates(ctx, deactivated, limit, offset)
	if err != nil {
		slog.Error("ListTemplates failed", "err", err, "tab", tab)
		return domains.SurveyPage{}, err
	}
	for i := range templates {
		blocks, err := h.blocks.ListBlocks(ctx, templates[i].ID)
		if err != nil {
			slog.Error("ListTemplates: load blocks failed", "err", err, "survey_id", templates[i].ID)
			return domains.SurveyPage{}, err
		}
		templates[i].Blocks = blocks
	}
	return newSurveyPage(templates, page, limit, total), nil
}

func (h *SurveyService) ArchiveSurvey(ctx context.Context, principal domains.Principal, surveyID string) (domains.DistributionResult, error) {
	if err := h.setFlags(ctx, principal, surveyID, domains.SurveyFlags{Archived: boolPtr(true)}); err != nil {
		return domains.DistributionResult{}, err
	}
	return domains.DistributionResult{Message: "Survey archived"}, nil
}

func (h *SurveyService) DeleteSurvey(ctx context.Context, principal domains.Principal, surveyID string) (domains.DistributionResult, error) {
	if err := h.setFlags(ctx, principal, surveyID, domains.SurveyFlags{Deleted: boolPtr(true)}); err != nil {
		return domains.DistributionResult{}, err
	}
	slog.Info("survey deleted", "survey_id", surveyID, "by", principal.UserID)
	return domains.DistributionResult{Message: "Survey deleted successfully"}, nil
}

func (h *SurveyService) SetTakingResponses(ctx context.Context, principal domains.Principal, surveyID string, taking bool) error {
	return h.setFlags(ctx, principal, surveyID, domains.SurveyFlags{Active: boolPtr(taking)})
}

// SetDeactivated applies an admin ACTIVATE or DEACTIVATE decision to a survey.
func (h *SurveyService) SetDeactivated(ctx context.Context, principal domains.Principal, surveyID, status string) (domains.Survey, error) {
	if !principal.Role.IsAdmin() {
		return domains.Survey{}, ErrForbidden
	}
	var deactivated bool
	switch status {
	case "DEACTIVATE":
		deactivated = true
	case "ACTIVATE":
	default:
		return domains.Survey{}, ErrInvalidStatus
	}

	survey, err := h.liveSurvey(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if err := h.provider.SetSurveyFlags(ctx, survey.ID, domains.SurveyFlags{Deactivated: &deactivated}); err != nil {
		slog.Error("SetDeactivated failed", "err", err, "survey_id", survey.ID)
		return domains.Survey{}, err
	}
	survey.Deactivated = deactivated
	return survey, nil
}

func (h *SurveyService) DistributeSurvey(ctx context.Context, principal domains.Principal, distribution domains.SurveyDistribution) (domains.DistributionResult, error) {
	survey, err := h.managedSurvey(ctx, principal, distribution.SurveyID)
	if err != nil {
		return domains.DistributionResult{}, err
	}

	if !survey.Sent {
		if err := h.provider.SetSurveyFlags(ctx, survey.ID, domains.SurveyFlags{Sent: boolPtr(true)}); err != nil {
			slog.Error("DistributeSurvey: mark sent failed", "err", err, "survey_id", survey.ID)
			return domains.DistributionResult{}, err
		}
	}

	for _, email := range distribution.Emails {
		if err := h.mailer.SendSurvey(ctx, email, distribution.Subject, distribution.Message, survey.Link); err != nil {
			slog.Error("DistributeSurvey: send failed", "err", err, "survey_id", survey.ID, "email", email)
			return domains.DistributionResult{}, fmt.Errorf("send survey to %s: %w", email, err)
		}
	}
	return domains.DistributionResult{Message: "Email Sent Successfully"}, nil
}

func (h *SurveyService) ScheduleDistribution(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error) {
	return h.schedule(ctx, principal, domains.ScheduleDistribute, schedule)
}

func (h *SurveyService) ScheduleDeletion(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error) {
	return h.schedule(ctx, principal, domains.ScheduleDelete, schedule)
}

func (h *SurveyService) ScheduleArchiving(ctx context.Context, principal domains.Principal, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error) {
	return h.schedule(ctx, principal, domains.ScheduleArchive, schedule)
}

func (h *SurveyService) schedule(ctx context.Context, principal domains.Principal, action string, schedule domains.SurveySchedule) (domains.ScheduledSurvey, error) {
	surveyID := schedule.SharingInfo.SurveyID
	if _, err := h.managedSurvey(ctx, principal, surveyID); err != nil {
		return domains.ScheduledSurvey{}, err
	}

	pending, err := h.schedules.HasPendingSchedule(ctx, surveyID, action)
	if err != nil {
		slog.Error("schedule: check pending failed", "err", err, "survey_id", surveyID, "action", action)
		return domains.ScheduledSurvey{}, err
	}
	if pending {
		return domains.ScheduledSurvey{}, fmt.Errorf("%w for %s", ErrAlreadyScheduled, action)
	}

	date, err := time.ParseInLocation(domains.ScheduleDateLayout, strings.TrimSpace(schedule.ScheduleDate), time.UTC)
	if err != nil {
		return domains.ScheduledSurvey{}, ErrInvalidScheduleDate
	}

	scheduled := domains.ScheduledSurvey{
		ID:            h.newID(),
		SurveyID:      surveyID,
		Action:        action,
		ScheduledDate: date,
	}
	if action == domains.ScheduleDistribute {
		scheduled.Subject = schedule.SharingInfo.Subject
		scheduled.Message = schedule.SharingInfo.Message
		scheduled.Emails = append([]string{}, schedule.SharingInfo.Emails...)
	}

	if err := h.schedules.SaveSchedule(ctx, scheduled); err != nil {
		slog.Error("schedule: save failed", "err", err, "survey_id", surveyID, "action", action)
		return domains.ScheduledSurvey{}, err
	}
	slog.Info("survey scheduled", "survey_id", surveyID, "action", action, "at", date)
	return scheduled, nil
}

func (h *SurveyService) setFlags(ctx context.Context, principal domains.Principal, surveyID string, flags domains.SurveyFlags) error {
	survey, err := h.managedSurvey(ctx, principal, surveyID)
	if err != nil {
		return err
	}
	if err := h.provider.SetSurveyFlags(ctx, survey.ID, flags); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSurveyNotFound
		}
		slog.Error("set survey flags failed", "err", err, "survey_id", survey.ID)
		return err
	}
	return nil
}

func (h *SurveyService) liveSurvey(ctx context.Context, surveyID string) (domains.Survey, error) {
	survey, err := h.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.Survey{}, ErrSurveyNotFound
		}
		slog.Error("load survey failed", "err", err, "survey_id", surveyID)
		return domains.Survey{}, err
	}
	if survey.Deleted {
		return domains.Survey{}, ErrSurveyNotFound
	}
	return survey, nil
}

func (h *SurveyService) managedSurvey(ctx context.Context, principal domains.Principal, surveyID string) (domains.Survey, error) {
	survey, err := h.liveSurvey(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if survey.OwnerID != principal.UserID && !principal.Role.IsAdmin() {
		return domains.Survey{}, ErrForbidden
	}
	return survey, nil
}

// normalizePage clamps page and limit and returns the row offset of the page.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPageNumber {
		page = maxPageNumber
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}

func newSurveyPage(items []domains.Survey, page, limit, total int) domains.SurveyPage {
	if items == nil {
		items = []domains.Survey{}
	}
	return domains.SurveyPage{
		Items:       items,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalItems:  total,
	}
}

func boolPtr(v bool) *bool {
	return &v
}
