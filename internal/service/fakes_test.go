package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"
)

// memStore is an in-memory stand-in for every provider the services use.
type memStore struct {
	surveys     map[string]domains.Survey
	blocks      map[string][]domains.Block
	responses   []domains.Response
	respondents []domains.Respondent
	users       map[string]domains.User
	passHashes  map[string]string
	schedules   []domains.ScheduledSurvey

	statsWrites int
	failSave    error
	lastOffset  int

	dashboard      domains.DashboardCounts
	dashboardSince time.Time
}

func newMemStore() *memStore {
	return &memStore{
		surveys:    make(map[string]domains.Survey),
		blocks:     make(map[string][]domains.Block),
		users:      make(map[string]domains.User),
		passHashes: make(map[string]string),
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func cloneBlocks(blocks []domains.Block) []domains.Block {
	out := make([]domains.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Clone())
	}
	return out
}

func cloneRespondent(r domains.Respondent) domains.Respondent {
	cp := r
	cp.Responses = append([]domains.Response{}, r.Responses...)
	return cp
}

// surveys

func (m *memStore) SaveSurvey(_ context.Context, s domains.SurveyToSave) (domains.Survey, error) {
	if m.failSave != nil {
		return domains.Survey{}, m.failSave
	}
	if _, ok := m.surveys[s.ID]; ok {
		return domains.Survey{}, storage.ErrConflict
	}
	survey := domains.Survey{
		ID:       s.ID,
		OwnerID:  s.OwnerID,
		Title:    s.Title,
		Category: s.Category,
		Link:     s.Link,
		Template: s.Template,
		Active:   true,
	}
	m.surveys[s.ID] = survey
	return survey, nil
}

func (m *memStore) UpdateSurveyDetails(_ context.Context, id, title, category string) error {
	s, ok := m.surveys[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.Title, s.Category = title, category
	m.surveys[id] = s
	return nil
}

func (m *memStore) GetSurveyByID(_ context.Context, id string) (domains.Survey, error) {
	s, ok := m.surveys[id]
	if !ok {
		return domains.Survey{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *memStore) SaveSurveyStats(_ context.Context, id string, stats domains.SurveyStats) error {
	s, ok := m.surveys[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.Sent = stats.Sent
	s.RespondentCount = stats.RespondentCount
	m.surveys[id] = s
	m.statsWrites++
	return nil
}

func (m *memStore) SetSurveyFlags(_ context.Context, id string, f domains.SurveyFlags) error {
	s, ok := m.surveys[id]
	if !ok {
		return storage.ErrNotFound
	}
	if f.Active != nil {
		s.Active = *f.Active
	}
	if f.Sent != nil {
		s.Sent = *f.Sent
	}
	if f.Archived != nil {
		s.Archived = *f.Archived
	}
	if f.Deleted != nil {
		s.Deleted = *f.Deleted
	}
	if f.Deactivated != nil {
		s.Deactivated = *f.Deactivated
	}
	m.surveys[id] = s
	return nil
}

func (m *memStore) sortedSurveys(keep func(domains.Survey) bool) []domains.Survey {
	var out []domains.Survey
	for _, s := range m.surveys {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate(items []domains.Survey, limit, offset int) ([]domains.Survey, int) {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], total
}

func (m *memStore) ListSurveysByOwner(_ context.Context, ownerID, tab string, limit, offset int) ([]domains.Survey, int, error) {
	items := m.sortedSurveys(func(s domains.Survey) bool {
		if s.OwnerID != ownerID || s.Deleted || s.Deactivated {
			return false
		}
		switch tab {
		case domains.SurveyTabSent:
			return s.Sent && !s.Archived
		case domains.SurveyTabDraft:
			return !s.Sent && !s.Archived
		case domains.SurveyTabArchived:
			return s.Archived
		default:
			return false
		}
	})
	m.lastOffset = offset
	got, total := paginate(items, limit, offset)
	return got, total, nil
}

func (m *memStore) ListTemplates(_ context.Context, deactivated bool, limit, offset int) ([]domains.Survey, int, error) {
	items := m.sortedSurveys(func(s domains.Survey) bool {
		return s.Template && !s.Deleted && s.Deactivated == deactivated
	})
	m.lastOffset = offset
	got, total := paginate(items, limit, offset)
	return got, total, nil
}

// blocks and questions

func (m *memStore) ListBlocksBySurvey(_ context.Context, surveyID string) ([]domains.Block, error) {
	return cloneBlocks(m.blocks[surveyID]), nil
}

func (m *memStore) SaveBlocks(_ context.Context, surveyID string, blocks []domains.Block) error {
	m.blocks[surveyID] = cloneBlocks(blocks)
	return nil
}

func (m *memStore) IncrementQuestionCounters(_ context.Context, questionID string, answered, skipped int) error {
	for surveyID, blocks := range m.blocks {
		for bi := range blocks {
			for qi := range blocks[bi].Questions {
				q := &m.blocks[surveyID][bi].Questions[qi]
				if q.ID == questionID {
					q.Answered += answered
					q.Skipped += skipped
					return nil
				}
			}
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) question(id string) domains.Question {
	for _, blocks := range m.blocks {
		for _, b := range blocks {
			for _, q := range b.Questions {
				if q.ID == id {
					return q
				}
			}
		}
	}
	return domains.Question{}
}

// responses and respondents

func (m *memStore) SaveResponses(_ context.Context, responses []domains.Response) error {
	m.responses = append(m.responses, responses...)
	return nil
}

func (m *memStore) ListResponsesByQuestions(_ context.Context, ids []string) (map[string][]domains.Response, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	grouped := make(map[string][]domains.Response)
	for _, r := range m.responses {
		if want[r.QuestionID] {
			grouped[r.QuestionID] = append(grouped[r.QuestionID], r)
		}
	}
	return grouped, nil
}

func (m *memStore) CountRespondentsBySurvey(_ context.Context, surveyID string) (int64, error) {
	var n int64
	for _, r := range m.respondents {
		if r.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetRespondentByID(_ context.Context, id string) (domains.Respondent, error) {
	for _, r := range m.respondents {
		if r.ID == id {
			return cloneRespondent(r), nil
		}
	}
	return domains.Respondent{}, storage.ErrNotFound
}

func (m *memStore) SaveRespondent(_ context.Context, r domains.Respondent) error {
	m.respondents = append(m.respondents, cloneRespondent(r))
	return nil
}

func (m *memStore) AppendResponses(_ context.Context, respondentID string, responses []domains.Response) error {
	for i := range m.respondents {
		if m.respondents[i].ID == respondentID {
			m.responses = append(m.responses, responses...)
			m.respondents[i].Responses = append(m.respondents[i].Responses, responses...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) ListRespondentsBySurvey(_ context.Context, surveyID string) ([]domains.Respondent, error) {
	out := make([]domains.Respondent, 0)
	for _, r := range m.respondents {
		if r.SurveyID == surveyID {
			out = append(out, cloneRespondent(r))
		}
	}
	return out, nil
}

func (m *memStore) ListRespondentTimes(_ context.Context, surveyID string) ([]time.Time, error) {
	var times []time.Time
	for _, r := range m.respondents {
		if r.SurveyID == surveyID {
			times = append(times, r.CreatedAt)
		}
	}
	return times, nil
}

// users

func (m *memStore) SaveUser(_ context.Context, passHash string, u domains.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return storage.ErrUserExist
		}
	}
	u.Password = passHash
	m.users[u.ID] = u
	m.passHashes[u.ID] = passHash
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (domains.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domains.User{}, storage.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domains.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domains.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]domains.User, error) {
	out := make([]domains.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateUserProfile(_ context.Context, id, username, email string) error {
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	for otherID, other := range m.users {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return storage.ErrUserExist
		}
	}
	u.Username, u.Email = username, email
	m.users[id] = u
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, id, passHash string) error {
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Password = passHash
	m.users[id] = u
	m.passHashes[id] = passHash
	return nil
}

func (m *memStore) SetUserActive(_ context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Active = active
	m.users[id] = u
	return nil
}

func (m *memStore) DashboardCounts(_ context.Context, since time.Time) (domains.DashboardCounts, error) {
	m.dashboardSince = since
	return m.dashboard, nil
}

// schedules

func (m *memStore) SaveSchedule(_ context.Context, s domains.ScheduledSurvey) error {
	m.schedules = append(m.schedules, s)
	return nil
}

func (m *memStore) HasPendingSchedule(_ context.Context, surveyID, action string) (bool, error) {
	for _, s := range m.schedules {
		if s.SurveyID == surveyID && s.Action == action && !s.Completed {
			return true, nil
		}
	}
	return false, nil
}

type sentMail struct {
	email, subject, message, link string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (r *recordingMailer) SendSurvey(_ context.Context, email, subject, message, link string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{email, subject, message, link})
	return nil
}

// seedSurvey stores an active survey with one block holding questions of the given titles.
func (m *memStore) seedSurvey(id string, titles ...string) {
	m.surveys[id] = domains.Survey{ID: id, OwnerID: "owner-1", Title: "Survey " + id, Active: true}
	block := domains.Block{ID: id + "-b1", SurveyID: id, Title: "Block"}
	for i, t := range titles {
		block.Questions = append(block.Questions, domains.Question{
			ID:      fmt.Sprintf("%s-q%d", id, i+1),
			BlockID: block.ID,
			Title:   t,
			Type:    domains.ShortText,
			Options: []string{},
		})
	}
	m.blocks[id] = []domains.Block{block}
}
