package service

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"surveysphere/internal/domains"

	"github.com/xuri/excelize/v2"
)

func TestBuildResponseGrid(t *testing.T) {
	analysis := domains.ResponseAnalysis{
		Responses: []domains.AllResponses{
			{Question: "Name"},
			{Question: "Colours"},
			{Question: "Comment"},
		},
		IndividualResults: []domains.Respondent{
			{ID: "R1", Responses: []domains.Response{
				{Question: "Colours", Answer: []string{"red", "blue"}},
				{Question: "Name", Answer: []string{"Ada"}},
				{Question: "Comment", Answer: []string{}},
			}},
			{ID: "R2", Responses: []domains.Response{
				{Question: "Removed question", Answer: []string{"ignored"}},
			}},
		},
	}

	want := [][]string{
		{"Name", "Colours", "Comment"},
		{"Ada", "red, blue", "Skipped"},
		{"-", "-", "-"},
	}
	if got := BuildResponseGrid(analysis); !reflect.DeepEqual(got, want) {
		t.Fatalf("grid = %v, want %v", got, want)
	}
}

func TestBuildResponseGridDuplicateTitlesUseFirstColumn(t *testing.T) {
	analysis := domains.ResponseAnalysis{
		Responses: []domains.AllResponses{{Question: "Why?"}, {Question: "Why?"}},
		IndividualResults: []domains.Respondent{{Responses: []domains.Response{
			{Question: "Why?", Answer: []string{"first"}},
			{Question: "Why?", Answer: []string{"second"}},
		}}},
	}

	got := BuildResponseGrid(analysis)
	if !reflect.DeepEqual(got[1], []string{"second", "-"}) {
		t.Fatalf("row = %v, want [second -]", got[1])
	}
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	grid := [][]string{
		{"Name", "Colours"},
		{"Ada", "red, blue"},
		{"-", "Skipped"},
	}

	content, err := WriteWorkbook(grid)
	if err != nil {
		t.Fatalf("WriteWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !reflect.DeepEqual(sheets, []string{"Survey Responses"}) {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("Survey Responses")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if !reflect.DeepEqual(rows, grid) {
		t.Fatalf("rows = %v, want %v", rows, grid)
	}
}

type stubAnalyzer struct {
	analysis domains.ResponseAnalysis
	err      error
}

func (s stubAnalyzer) GetResponses(context.Context, string) (domains.ResponseAnalysis, error) {
	return s.analysis, s.err
}

func TestExportSurvey(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("S1", "Name")
	s := store.surveys["S1"]
	s.Title = "Team Pulse"
	store.surveys["S1"] = s

	svc := NewExportService(store, stubAnalyzer{analysis: domains.ResponseAnalysis{
		Responses:         []domains.AllResponses{{Question: "Name"}},
		IndividualResults: []domains.Respondent{{Responses: []domains.Response{{Question: "Name", Answer: []string{"Ada"}}}}},
	}})

	export, err := svc.ExportSurvey(context.Background(), "S1")
	if err != nil {
		t.Fatalf("ExportSurvey returned error: %v", err)
	}
	if export.FileName != "Team Pulse.xlsx" {
		t.Fatalf("file name = %q", export.FileName)
	}

	f, err := excelize.OpenReader(bytes.NewReader(export.Content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Survey Responses")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"Name"}, {"Ada"}}) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExportSurveyErrors(t *testing.T) {
	store := newMemStore()
	store.seedSurvey("UNTITLED", "Q")
	s := store.surveys["UNTITLED"]
	s.Title = "  "
	store.surveys["UNTITLED"] = s

	svc := NewExportService(store, stubAnalyzer{})

	if _, err := svc.ExportSurvey(context.Background(), "NOPE"); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("missing survey: err = %v", err)
	}
	if _, err := svc.ExportSurvey(context.Background(), "UNTITLED"); !errors.Is(err, ErrSurveyTitleMissing) {
		t.Fatalf("untitled survey: err = %v", err)
	}

	boom := errors.New("boom")
	svc = NewExportService(store, stubAnalyzer{err: boom})
	store.seedSurvey("S1", "Q")
	if _, err := svc.ExportSurvey(context.Background(), "S1"); !errors.Is(err, boom) {
		t.Fatalf("analyzer failure: err = %v", err)
	}
}
