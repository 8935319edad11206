package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"curricula/internal/domain"
)

// TableHeader is the exact column layout of the curriculum table.
var TableHeader = []string{
	"Category", "Subtopic", "Level", "Bloom", "Standards",
	"Difficulty", "Hours", "Sequence", "CategoryOrder", "ConceptID",
}

// WriteCurriculumTable writes rows to path as CSV, replacing any existing file.
func WriteCurriculumTable(path string, rows domain.CurriculumTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create curriculum table: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(TableHeader); err != nil {
		f.Close()
		return fmt.Errorf("write curriculum table header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Category,
			r.Subtopic,
			string(r.Level),
			string(r.Bloom),
			strings.Join(r.Standards, domain.StandardsSeparator),
			formatFloat(r.Difficulty),
			formatFloat(r.Hours),
			strconv.Itoa(r.Sequence),
			strconv.Itoa(r.CategoryOrder),
			r.ConceptID,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write curriculum table row %s: %w", r.ConceptID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush curriculum table: %w", err)
	}
	return f.Close()
}

// ReadCurriculumTable parses a file written by WriteCurriculumTable.
func ReadCurriculumTable(path string) (domain.CurriculumTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curriculum table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(TableHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read curriculum table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("curriculum table %s has no header", path)
	}
	for i, h := range TableHeader {
		if records[0][i] != h {
			return nil, fmt.Errorf("curriculum table column %d is %q, want %q", i, records[0][i], h)
		}
	}

	rows := make(domain.CurriculumTable, 0, len(records)-1)
	for line, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("curriculum table line %d: %w", line+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (domain.CurriculumTableRow, error) {
	difficulty, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return domain.CurriculumTableRow{}, fmt.Errorf("difficulty: %w", err)
	}
	hours, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return domain.CurriculumTableRow{}, fmt.Errorf("hours: %w", err)
	}
	seq, err := strconv.Atoi(rec[7])
	if err != nil {
		return domain.CurriculumTableRow{}, fmt.Errorf("sequence: %w", err)
	}
	order, err := strconv.Atoi(rec[8])
	if err != nil {
		return domain.CurriculumTableRow{}, fmt.Errorf("category order: %w", err)
	}

	standards := []string{}
	if rec[4] != "" {
		standards = strings.Split(rec[4], domain.StandardsSeparator)
	}
	return domain.CurriculumTableRow{
		Category:      rec[0],
		Subtopic:      rec[1],
		Level:         domain.Level(rec[2]),
		Bloom:         domain.BloomLevel(rec[3]),
		Standards:     standards,
		Difficulty:    difficulty,
		Hours:         hours,
		Sequence:      seq,
		CategoryOrder: order,
		ConceptID:     rec[9],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
