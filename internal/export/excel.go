// Package export renders ranked match results as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/proofdin/proofdin/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the match workbook.
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var candidateHeaders = []string{"Rank", "Candidate", "Headline", "Location", "Years", "Score", "Matched Skills"}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// MatchWorkbook builds a workbook with a summary of job and a ranked candidates sheet.
func MatchWorkbook(job *types.Job, results []types.MatchResult, generatedAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeSummary(f, job, results, generatedAt); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidates(f, results); err != nil {
		return nil, fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// WriteFile writes the match workbook to path, adding the .xlsx extension when missing.
func WriteFile(path string, job *types.Job, results []types.MatchResult, generatedAt time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	buf, err := MatchWorkbook(job, results, generatedAt)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func writeSummary(f *excelize.File, job *types.Job, results []types.MatchResult, generatedAt time.Time) error {
	sheet := SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Candidate Match Report"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	title := job.Title
	if title == "" {
		title = "(untitled)"
	}
	rows := [][2]any{
		{"Job Title:", title},
		{"Company:", job.Company},
		{"Job ID:", job.ID.String()},
		{"Job Skills:", strings.Join(job.Skills, ", ")},
		{"Generated:", generatedAt.Format("2006-01-02 15:04:05")},
		{"Candidates Ranked:", len(results)},
	}
	if len(results) > 0 {
		total := 0
		for _, r := range results {
			total += r.Score
		}
		rows = append(rows,
			[2]any{"Top Score:", results[0].Score},
			[2]any{"Average Score:", fmt.Sprintf("%.1f", float64(total)/float64(len(results)))},
		)
	}

	for i, kv := range rows {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(sheet, label, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(f *excelize.File, results []types.MatchResult) error {
	sheet := CandidatesSheet
	widths := []float64{8, 25, 35, 20, 8, 8, 50}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}
	bandStyles := make(map[string]int, 3)
	for band, color := range map[string]string{"strong": "C6EFCE", "partial": "FFEB9C", "weak": "FFC7CE"} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		bandStyles[band] = style
	}

	for i, h := range candidateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, r := range results {
		row := i + 2
		values := []any{i + 1, r.Name, r.Headline, r.Location, r.YearsOfExperience, r.Score, strings.Join(r.MatchedSkills, ", ")}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), bandStyles[scoreBand(r.Score)]); err != nil {
			return err
		}
	}

	if len(results) > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:G%d", len(results)+1), []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// scoreBand buckets a 0-100 match score for row coloring.
func scoreBand(score int) string {
	switch {
	case score >= 75:
		return "strong"
	case score >= 40:
		return "partial"
	default:
		return "weak"
	}
}
