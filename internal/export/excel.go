package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/hire-picker/internal/candidate"
)

const (
	TeamSheet       = "Team"
	CandidatesSheet = "Candidates"

	// ContentType is the media type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Member is one selected candidate with the reason it was picked.
type Member struct {
	Candidate *candidate.Candidate
	Reason    string
}

// Write renders the team and the ranked pool as an xlsx workbook.
func Write(w io.Writer, team []Member, pool *candidate.Pool) error {
	f, err := build(team, pool)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ToFile saves the workbook at path, adding the .xlsx extension when it is missing.
func ToFile(path string, team []Member, pool *candidate.Pool) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := build(team, pool)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

func build(team []Member, pool *candidate.Pool) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", TeamSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := teamSheet(f, header, team); err != nil {
		f.Close()
		return nil, fmt.Errorf("team sheet: %w", err)
	}
	if err := candidatesSheet(f, header, pool); err != nil {
		f.Close()
		return nil, fmt.Errorf("candidates sheet: %w", err)
	}

	return f, nil
}

func teamSheet(f *excelize.File, header int, team []Member) error {
	if err := headerRow(f, TeamSheet, header, []string{"Rank", "ID", "Name", "Location", "Score", "Reason"}); err != nil {
		return err
	}
	if err := setWidths(f, TeamSheet, colWidth{"C", "D", 25}, colWidth{"F", "F", 80}); err != nil {
		return err
	}

	for i, m := range team {
		row := i + 2
		values := []any{i + 1, m.Candidate.ID, m.Candidate.Name, m.Candidate.Location, round2(m.Candidate.Score), m.Reason}
		if err := f.SetSheetRow(TeamSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}
	return nil
}

func candidatesSheet(f *excelize.File, header int, pool *candidate.Pool) error {
	if err := headerRow(f, CandidatesSheet, header, []string{
		"Rank", "ID", "Name", "Email", "Location", "Skills", "Experience", "Education", "Salary", "Score",
	}); err != nil {
		return err
	}
	if err := setWidths(f, CandidatesSheet, colWidth{"C", "E", 25}, colWidth{"F", "F", 40}); err != nil {
		return err
	}

	if pool == nil {
		return nil
	}

	ranked := pool.Clone()
	ranked.SortByScore()
	for i, c := range ranked.Items {
		row := i + 2
		var salary any
		if c.HasSalary() {
			salary = c.Salary()
		}
		values := []any{
			i + 1, c.ID, c.Name, c.Email, c.Location, strings.Join(c.Skills, ", "),
			c.ExperienceYears, c.Education, salary, round2(c.Score),
		}
		if err := f.SetSheetRow(CandidatesSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}
	return nil
}

func headerRow(f *excelize.File, sheet string, style int, titles []string) error {
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

type colWidth struct {
	from, to string
	width    float64
}

func setWidths(f *excelize.File, sheet string, widths ...colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("column width %s:%s: %w", w.from, w.to, err)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
