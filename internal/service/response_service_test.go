package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"surveysphere/internal/domains"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func newTestRecorder(store *memStore) *ResponseService {
	svc := NewResponseService(store, store, store, store, store)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = sequentialIDs("id-")
	return svc
}

func strPtr(s string) *string { return &s }

func TestRecordResponseCreatesAnonymousRespondent(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Name", "Feedback")
	svc := newTestRecorder(store)

	receipt, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID: "S1",
		Responses: []domains.Response{
			{QuestionID: "S1-q1", Question: "Name", QuestionType: "short-text", Answer: []string{"Ada"}},
			{QuestionID: "S1-q2", Question: "Feedback", QuestionType: "short-text", Answer: []string{""}},
		},
	}, "", nil)
	if err != nil {
		t.Fatalf("RecordResponse returned error: %v", err)
	}

	if receipt.Message != "Response recorded successfully" {
		t.Fatalf("message = %q", receipt.Message)
	}
	if receipt.Time != "2024-03-05T14:30:00Z" {
		t.Fatalf("time = %q, want 2024-03-05T14:30:00Z", receipt.Time)
	}
	if len(store.respondents) != 1 {
		t.Fatalf("respondents stored = %d, want 1", len(store.respondents))
	}
	r := store.respondents[0]
	if r.ID != receipt.RespondentID {
		t.Fatalf("receipt id = %q, stored id = %q", receipt.RespondentID, r.ID)
	}
	if !r.IsAnonymous || r.Email != nil {
		t.Fatalf("respondent should be anonymous, got anonymous=%v email=%v", r.IsAnonymous, r.Email)
	}
	if r.SurveyID != "S1" || len(r.Responses) != 2 {
		t.Fatalf("respondent = %+v", r)
	}
	if len(store.responses) != 2 {
		t.Fatalf("responses stored = %d, want 2", len(store.responses))
	}

	if q := store.question("S1-q1"); q.Answered != 1 || q.Skipped != 0 {
		t.Fatalf("q1 counters = (%d,%d), want (1,0)", q.Answered, q.Skipped)
	}
	if q := store.question("S1-q2"); q.Answered != 0 || q.Skipped != 1 {
		t.Fatalf("q2 counters = (%d,%d), want (0,1)", q.Answered, q.Skipped)
	}

	survey := store.surveys["S1"]
	if !survey.Sent {
		t.Fatalf("survey should be marked sent")
	}
	if survey.RespondentCount != 1 {
		t.Fatalf("respondent count = %d, want 1", survey.RespondentCount)
	}
}

func TestRecordResponseCounterRules(t *testing.T) {
	cases := []struct {
		name         string
		answer       []string
		wantAnswered int
		wantSkipped  int
	}{
		{"all non-blank", []string{"red", "blue"}, 1, 0},
		{"all blank", []string{" ", ""}, 0, 1},
		{"no entries", []string{}, 0, 1},
		{"mixed", []string{"red", ""}, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			store.seedSurvey("S1", "Colours")
			svc := newTestRecorder(store)

			_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
				SurveyID:  "S1",
				Responses: []domains.Response{{QuestionID: "S1-q1", Question: "Colours", Answer: tc.answer}},
			}, "", nil)
			if err != nil {
				t.Fatalf("RecordResponse returned error: %v", err)
			}

			q := store.question("S1-q1")
			if q.Answered != tc.wantAnswered || q.Skipped != tc.wantSkipped {
				t.Fatalf("counters = (%d,%d), want (%d,%d)", q.Answered, q.Skipped, tc.wantAnswered, tc.wantSkipped)
			}
		})
	}
}

func TestRecordResponseInactiveSurveyStillUpdatesStats(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Name")
	s := store.surveys["S1"]
	s.Active = false
	store.surveys["S1"] = s
	svc := newTestRecorder(store)

	_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{QuestionID: "S1-q1", Answer: []string{"x"}}},
	}, "", nil)
	if !errors.Is(err, ErrSurveyNotTakingResponses) {
		t.Fatalf("err = %v, want ErrSurveyNotTakingResponses", err)
	}
	if err.Error() != "This survey is no longer taking responses" {
		t.Fatalf("message = %q", err.Error())
	}

	survey := store.surveys["S1"]
	if !survey.Sent || survey.RespondentCount != 1 {
		t.Fatalf("stats not updated before rejection: sent=%v count=%d", survey.Sent, survey.RespondentCount)
	}
	if len(store.responses) != 0 || len(store.respondents) != 0 {
		t.Fatalf("rejected submission stored data: responses=%d respondents=%d", len(store.responses), len(store.respondents))
	}
	if q := store.question("S1-q1"); q.Answered != 0 || q.Skipped != 0 {
		t.Fatalf("counters changed on rejected submission: (%d,%d)", q.Answered, q.Skipped)
	}
}

func TestRecordResponseMissingOrDeletedSurvey(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("GONE", "Q")
	s := store.surveys["GONE"]
	s.Deleted = true
	store.surveys["GONE"] = s
	svc := newTestRecorder(store)

	for _, id := range []string{"NOPE", "GONE"} {
		_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{SurveyID: id}, "", nil)
		if !errors.Is(err, ErrSurveyNotFound) {
			t.Fatalf("survey %s: err = %v, want ErrSurveyNotFound", id, err)
		}
	}
	if store.statsWrites != 0 {
		t.Fatalf("stats written for missing survey")
	}
}

func TestRecordResponseRequiresSurveyID(t *testing.T) {
	svc := newTestRecorder(newMemStore())
	if _, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{}, "", nil); !errors.Is(err, ErrSurveyIDRequired) {
		t.Fatalf("err = %v, want ErrSurveyIDRequired", err)
	}
}

func TestRecordResponseRespondentCountGrows(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q")
	svc := newTestRecorder(store)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
			SurveyID:  "S1",
			Responses: []domains.Response{{QuestionID: "S1-q1", Answer: []string{"a"}}},
		}, "", nil); err != nil {
			t.Fatalf("submission %d: %v", i, err)
		}
	}
	if got := store.surveys["S1"].RespondentCount; got != 3 {
		t.Fatalf("respondent count = %d, want 3", got)
	}
	if q := store.question("S1-q1"); q.Answered != 3 {
		t.Fatalf("answered = %d, want 3", q.Answered)
	}
}

func TestRecordResponseUpdatePathAppendsWithoutCounters(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1", "Q2")
	created := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	store.respondents = []domains.Respondent{{
		ID:          "R1",
		SurveyID:    "S1",
		IsAnonymous: true,
		CreatedAt:   created,
		Responses:   []domains.Response{{ID: "old", QuestionID: "S1-q1", Answer: []string{"a"}}},
	}}
	svc := newTestRecorder(store)

	receipt, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{QuestionID: "S1-q2", Question: "Q2", Answer: []string{"b"}}},
	}, "R1", nil)
	if err != nil {
		t.Fatalf("RecordResponse returned error: %v", err)
	}
	if receipt.RespondentID != "R1" {
		t.Fatalf("respondent id = %q, want R1", receipt.RespondentID)
	}
	if receipt.Time != "2024-03-01T09:15:00Z" {
		t.Fatalf("time = %q, want the stored creation time", receipt.Time)
	}
	if len(store.respondents) != 1 {
		t.Fatalf("respondents = %d, want 1", len(store.respondents))
	}
	if got := len(store.respondents[0].Responses); got != 2 {
		t.Fatalf("respondent responses = %d, want 2", got)
	}
	if q := store.question("S1-q2"); q.Answered != 0 || q.Skipped != 0 {
		t.Fatalf("update path changed counters: (%d,%d)", q.Answered, q.Skipped)
	}
	if got := store.surveys["S1"].RespondentCount; got != 2 {
		t.Fatalf("respondent count = %d, want 2", got)
	}
}

func TestRecordResponseUnknownRespondentIDCreatesRespondent(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1")
	svc := newTestRecorder(store)

	receipt, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{QuestionID: "S1-q1", Answer: []string{"a"}}},
	}, "missing", nil)
	if err != nil {
		t.Fatalf("RecordResponse returned error: %v", err)
	}
	if receipt.RespondentID == "missing" || len(store.respondents) != 1 {
		t.Fatalf("expected a new respondent, got receipt %+v", receipt)
	}
	if q := store.question("S1-q1"); q.Answered != 1 {
		t.Fatalf("answered = %d, want 1", q.Answered)
	}
}

func TestRecordResponseUnknownQuestion(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1")
	svc := newTestRecorder(store)

	_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{QuestionID: "ghost", Answer: []string{"a", ""}}},
	}, "", nil)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
	if len(store.respondents) != 0 {
		t.Fatalf("respondent stored despite unknown question")
	}
}

func TestRecordResponseIdentity(t *testing.T) {
	grace := domains.User{ID: "U9", Username: "grace", Email: "grace@example.com", Role: domains.RoleUser}.Principal()
	principal := &grace

	cases := []struct {
		name      string
		email     *string
		principal *domains.Principal
		wantEmail *string
		wantAnon  bool
	}{
		{"registered email is canonicalised", strPtr("ADA@Example.com"), nil, strPtr("ada@example.com"), false},
		{"unregistered email is anonymous", strPtr("stranger@example.com"), principal, nil, true},
		{"no email falls back to the principal's login email", nil, principal, strPtr("grace@example.com"), false},
		{"blank email falls back to the principal's login email", strPtr("  "), principal, strPtr("grace@example.com"), false},
		{"no email and no principal", nil, nil, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			store.seedSurvey("S1", "Q1")
			store.users["U1"] = domains.User{ID: "U1", Username: "ada", Email: "ada@example.com", Role: domains.RoleUser}
			svc := newTestRecorder(store)

			_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
				SurveyID:  "S1",
				Email:     tc.email,
				Responses: []domains.Response{{QuestionID: "S1-q1", Answer: []string{"a"}}},
			}, "", tc.principal)
			if err != nil {
				t.Fatalf("RecordResponse returned error: %v", err)
			}

			r := store.respondents[0]
			if r.IsAnonymous != tc.wantAnon {
				t.Fatalf("anonymous = %v, want %v", r.IsAnonymous, tc.wantAnon)
			}
			switch {
			case tc.wantEmail == nil && r.Email != nil:
				t.Fatalf("email = %q, want nil", *r.Email)
			case tc.wantEmail != nil && (r.Email == nil || *r.Email != *tc.wantEmail):
				t.Fatalf("email = %v, want %q", r.Email, *tc.wantEmail)
			}
		})
	}
}

func TestRecordResponseCopiesSubmittedAnswers(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1")
	svc := newTestRecorder(store)

	answer := []string{"before"}
	if _, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{ID: "client-id", QuestionID: "S1-q1", Answer: answer}},
	}, "", nil); err != nil {
		t.Fatalf("RecordResponse returned error: %v", err)
	}
	answer[0] = "after"

	stored := store.responses[0]
	if stored.ID == "client-id" {
		t.Fatalf("client supplied response id was kept")
	}
	if stored.Answer[0] != "before" {
		t.Fatalf("stored answer aliased the submission: %q", stored.Answer[0])
	}
}

func TestRecordResponseQuestionFromAnotherSurvey(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1")
	store.seedSurvey("S2", "Other")
	svc := newTestRecorder(store)

	_, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID: "S1",
		Responses: []domains.Response{
			{QuestionID: "S1-q1", Answer: []string{"a"}},
			{QuestionID: "S2-q1", Answer: []string{"b"}},
		},
	}, "", nil)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
	if len(store.responses) != 0 || len(store.respondents) != 0 {
		t.Fatalf("stored data for a rejected submission: responses=%d respondents=%d", len(store.responses), len(store.respondents))
	}
	for _, id := range []string{"S1-q1", "S2-q1"} {
		if q := store.question(id); q.Answered != 0 || q.Skipped != 0 {
			t.Fatalf("%s counters = (%d,%d), want untouched", id, q.Answered, q.Skipped)
		}
	}
}

func TestRecordResponseRespondentFromAnotherSurveyIsNotReused(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Q1")
	store.seedSurvey("S2", "Other")
	store.respondents = []domains.Respondent{{ID: "R2", SurveyID: "S2", IsAnonymous: true, CreatedAt: fixedNow}}
	svc := newTestRecorder(store)

	receipt, err := svc.RecordResponse(context.Background(), domains.ResponseSubmission{
		SurveyID:  "S1",
		Responses: []domains.Response{{QuestionID: "S1-q1", Answer: []string{"a"}}},
	}, "R2", nil)
	if err != nil {
		t.Fatalf("RecordResponse returned error: %v", err)
	}
	if receipt.RespondentID == "R2" {
		t.Fatalf("response appended to a respondent of another survey")
	}
	if got := len(store.respondents[0].Responses); got != 0 {
		t.Fatalf("foreign respondent gained %d responses", got)
	}
	if len(store.respondents) != 2 || store.respondents[1].SurveyID != "S1" {
		t.Fatalf("expected a new respondent on S1, got %+v", store.respondents)
	}
	if q := store.question("S1-q1"); q.Answered != 1 {
		t.Fatalf("answered = %d, want 1", q.Answered)
	}
}
