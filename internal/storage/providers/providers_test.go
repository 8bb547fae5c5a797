package providers

import (
	"strings"
	"testing"

	"surveysphere/internal/domains"
)

func TestOwnerTabFilter(t *testing.T) {
	for _, tab := range []string{domains.SurveyTabSent, domains.SurveyTabDraft, domains.SurveyTabArchived, domains.SurveyTabScheduled} {
		filter, err := ownerTabFilter(tab)
		if err != nil || filter == "" {
			t.Fatalf("tab %q: filter = %q, err = %v", tab, filter, err)
		}
	}

	scheduled, _ := ownerTabFilter(domains.SurveyTabScheduled)
	if !strings.Contains(scheduled, "NOT ss.completed") {
		t.Fatalf("scheduled filter ignores completion: %q", scheduled)
	}
	if _, err := ownerTabFilter("trash"); err == nil {
		t.Fatalf("expected an error for an unknown tab")
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("nonNil(nil) = %#v", got)
	}
	in := []string{"a"}
	if got := nonNil(in); &got[0] != &in[0] {
		t.Fatalf("nonNil copied a non-nil slice")
	}
}
