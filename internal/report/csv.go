package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/models"
)

// DefaultPath is where the suggestions report is written and read.
const DefaultPath = "objects.csv"

// ErrNoReport is returned by Load when the report file does not exist.
var ErrNoReport = errors.New("no report file")

var columns = []string{"Name", "Type", "Constellation", "Rise", "Set", "Duration", "Magnitude"}

// WriteCSV writes rows with a leading unnamed index column.
func WriteCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, columns...)); err != nil {
		return err
	}
	for i, r := range rows {
		record := []string{
			strconv.Itoa(i),
			r.Name,
			r.Type,
			r.Constellation,
			strconv.Itoa(r.Rise),
			strconv.Itoa(r.Set),
			formatFloat(r.Duration),
			formatFloat(r.Magnitude),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a report, with or without the index column, sorted by magnitude.
func ReadCSV(r io.Reader) ([]models.ReportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var rows []models.ReportRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	Sort(rows)
	return rows, nil
}

func parseRow(record []string, idx map[string]int) (models.ReportRow, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		row models.ReportRow
		err error
	)
	row.Name = get("Name")
	row.Type = get("Type")
	row.Constellation = get("Constellation")
	if row.Rise, err = parseHour(get("Rise")); err != nil {
		return row, fmt.Errorf("invalid Rise: %w", err)
	}
	if row.Set, err = parseHour(get("Set")); err != nil {
		return row, fmt.Errorf("invalid Set: %w", err)
	}
	if row.Duration, err = strconv.ParseFloat(get("Duration"), 64); err != nil {
		return row, fmt.Errorf("invalid Duration: %w", err)
	}
	if row.Magnitude, err = strconv.ParseFloat(get("Magnitude"), 64); err != nil {
		return row, fmt.Errorf("invalid Magnitude: %w", err)
	}
	return row, nil
}

// parseHour accepts "5" and "5.0".
func parseHour(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	h := int(f)
	if h < 0 || h > 23 || float64(h) != f {
		return 0, fmt.Errorf("hour %q out of range", s)
	}
	return h, nil
}

// formatFloat renders whole numbers with a trailing ".0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Load reads the report at path. A missing file is ErrNoReport.
func Load(path string) ([]models.ReportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	return rows, nil
}

// Save writes the report to path, creating its directory if needed.
func Save(path string, rows []models.ReportRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

// Filter returns the rows passing f, in their original order.
func Filter(rows []models.ReportRow, f catalog.Filter) []models.ReportRow {
	out := make([]models.ReportRow, 0, len(rows))
	for _, r := range rows {
		if f.Match(r.Constellation, r.Type, r.Magnitude, true) {
			out = append(out, r)
		}
	}
	return out
}
