package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eazyai/screener/internal/screener"
	"github.com/eazyai/screener/internal/store"
)

// Verdict row fills in the candidates sheet.
const (
	fillShortlist = "C6EFCE"
	fillReview    = "FFEB9C"
	fillReject    = "FFC7CE"
	fillHeader    = "4472C4"
)

// WriteExcel renders a run as a two-sheet workbook: a summary sheet with
// session statistics and a color-coded candidates sheet. The verdict filter
// behaves like in WriteCSV.
func WriteExcel(w io.Writer, run store.AnalysisRun, verdict string) error {
	f := excelize.NewFile()
	defer f.Close()

	candidates := filterByVerdict(run.Candidates, verdict)

	summarySheet := "Summary"
	candidatesSheet := "Candidates"

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("create candidates sheet: %w", err)
	}

	if err := writeSummarySheet(f, summarySheet, run, candidates); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, candidatesSheet, candidates); err != nil {
		return fmt.Errorf("write candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, run store.AnalysisRun, candidates []screener.CandidateAnalysis) error {
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillHeader}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Resume Screening Report")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	f.MergeCell(sheet, "A1", "B1")

	var shortlisted, inReview, rejected int
	var totalScore float64
	for _, c := range candidates {
		totalScore += c.Score
		switch c.Verdict {
		case screener.VerdictShortlist:
			shortlisted++
		case screener.VerdictReject:
			rejected++
		default:
			inReview++
		}
	}

	avg := 0.0
	if len(candidates) > 0 {
		avg = totalScore / float64(len(candidates))
	}

	rows := []struct {
		label string
		value any
	}{
		{"Session:", run.SessionID},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Analyzed:", run.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Total Candidates:", len(candidates)},
		{"Shortlisted:", shortlisted},
		{"In Review:", inReview},
		{"Rejected:", rejected},
		{"Average Score:", fmt.Sprintf("%.2f", avg)},
	}

	for i, r := range rows {
		row := i + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.label)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.value)
	}

	return nil
}

func writeCandidatesSheet(f *excelize.File, sheet string, candidates []screener.CandidateAnalysis) error {
	headers := []string{
		"Name", "Email", "Phone", "Score",
		"Skills", "Domain", "Experience", "JD Similarity",
		"Verdict", "Fraud", "Fitment", "Red Flags", "Highlights",
		"Resume File", "Recruiter Notes",
	}

	widths := []float64{22, 28, 16, 10, 10, 10, 12, 14, 12, 8, 50, 40, 40, 24, 30}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheet, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillHeader}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	verdictStyles := map[string]int{}
	for verdict, fill := range map[string]string{
		screener.VerdictShortlist: fillShortlist,
		screener.VerdictReview:    fillReview,
		screener.VerdictReject:    fillReject,
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		verdictStyles[verdict] = style
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	for i, c := range candidates {
		row := i + 2
		values := []any{
			c.Name, c.Email, c.Phone, c.Score,
			c.SkillsMatch, c.DomainMatch, c.ExperienceMatch, c.JDSimilarity,
			c.Verdict, c.FraudDetected, c.Fitment,
			strings.Join(c.RedFlags, "; "), strings.Join(c.Highlights, "; "),
			c.ResumeFile, c.RecruiterNotes,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)
		}

		if style, ok := verdictStyles[c.Verdict]; ok {
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), style)
		}
	}

	if len(candidates) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, len(candidates)+1), nil)
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}
