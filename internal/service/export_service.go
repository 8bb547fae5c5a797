package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName  = "Survey Responses"
	exportUnanswered = "-"
	exportSkipped    = "Skipped"
)

type ExportService struct {
	surveys  SurveyReader
	analyzer ResponseAnalyzer
}

type ResponseAnalyzer interface {
	GetResponses(ctx context.Context, surveyID string) (domains.ResponseAnalysis, error)
}

func NewExportService(surveys SurveyReader, analyzer ResponseAnalyzer) *ExportService {
	return &ExportService{
		surveys:  surveys,
		analyzer: analyzer,
	}
}

func (s *ExportService) ExportSurvey(ctx context.Context, surveyID string) (domains.SpreadsheetExport, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.SpreadsheetExport{}, ErrSurveyNotFound
		}
		return domains.SpreadsheetExport{}, err
	}
	if survey.Deleted {
		return domains.SpreadsheetExport{}, ErrSurveyNotFound
	}
	title := strings.TrimSpace(survey.Title)
	if title == "" {
		return domains.SpreadsheetExport{}, ErrSurveyTitleMissing
	}

	analysis, err := s.analyzer.GetResponses(ctx, survey.ID)
	if err != nil {
		return domains.SpreadsheetExport{}, err
	}

	content, err := WriteWorkbook(BuildResponseGrid(analysis))
	if err != nil {
		slog.Error("ExportSurvey: write workbook failed", "err", err, "survey_id", survey.ID)
		return domains.SpreadsheetExport{}, ErrExportFailed
	}
	return domains.SpreadsheetExport{FileName: title + ".xlsx", Content: content}, nil
}

// BuildResponseGrid returns a header row of question texts followed by one row per
// respondent. Cells default to "-". A respondent's answer lands in the first column
// whose question text matches, joined with ", ", or "Skipped" when the join is empty.
func BuildResponseGrid(analysis domains.ResponseAnalysis) [][]string {
	header := make([]string, 0, len(analysis.Responses))
	for _, r := range analysis.Responses {
		header = append(header, r.Question)
	}

	grid := make([][]string, 0, len(analysis.IndividualResults)+1)
	grid = append(grid, header)
	for _, respondent := range analysis.IndividualResults {
		row := make([]string, len(header))
		for i := range row {
			row[i] = exportUnanswered
		}
		for _, response := range respondent.Responses {
			col := slices.Index(header, response.Question)
			if col < 0 {
				continue
			}
			answer := strings.Join(response.Answer, ", ")
			if answer == "" {
				answer = exportSkipped
			}
			row[col] = answer
		}
		grid = append(grid, row)
	}
	return grid
}

func WriteWorkbook(grid [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
