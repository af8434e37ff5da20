package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/talentflow/ats/internal/entities"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName = "Candidates"
)

var ErrNothingToExport = errors.New("no candidates to export")

var header = []string{"Name", "Email", "Phone", "Job", "Stage", "Rating", "Applied Date"}

// Row is one exported candidate. Fields the store does not carry for
// the export view fall back to fixed placeholders.
type Row struct {
	Name        string
	Email       string
	Phone       string
	Job         string
	Stage       string
	Rating      int
	AppliedDate string
}

// NewRow flattens a candidate for export. jobTitle and stageLabel are
// resolved by the caller; empty values get the "N/A" placeholder.
func NewRow(candidate entities.Candidate, jobTitle, stageLabel string) Row {

	row := Row{
		Name:        candidate.FullName,
		Email:       candidate.Email,
		Phone:       candidate.Phone,
		Job:         jobTitle,
		Stage:       stageLabel,
		Rating:      candidate.Rating,
		AppliedDate: candidate.CreatedAt.Format("1/2/2006"),
	}
	if row.Phone == "" {
		row.Phone = "N/A"
	}
	if row.Job == "" {
		row.Job = "N/A"
	}
	if row.Stage == "" {
		row.Stage = candidate.CurrentStage
	}
	return row
}

func (r Row) strings() []string {
	return []string{r.Name, r.Email, r.Phone, r.Job, r.Stage,
		strconv.Itoa(r.Rating), r.AppliedDate}
}

// WriteCSV writes the rows as RFC 4180 CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {

	if len(rows) == 0 {
		return ErrNothingToExport
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, row := range rows {
		if err := writer.Write(row.strings()); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteWorkbook writes the rows as an xlsx workbook with a single
// "Candidates" sheet.
func WriteWorkbook(w io.Writer, rows []Row) error {

	if len(rows) == 0 {
		return ErrNothingToExport
	}

	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, "create sheet")
	}
	file.SetActiveSheet(index)
	if err = file.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "drop default sheet")
	}

	cells := append([][]string{header}, lo.Map(rows, func(row Row, _ int) []string {
		return row.strings()
	})...)

	for i, line := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err = file.SetSheetRow(sheetName, cell, &line); err != nil {
			return errors.Wrap(err, "write sheet row")
		}
	}

	return errors.Wrap(file.Write(w), "write workbook")
}

// Filename builds the download name for the given format and day,
// e.g. candidates-2025-06-01.csv.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("candidates-%s.%s", now.Format("2006-01-02"), format)
}
