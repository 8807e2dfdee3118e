// Package csvfile reads and writes record batches as CSV with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/statclust/record"
)

// Schema names the CSV columns holding the record ID and metrics.
type Schema struct {
	ID      string
	Metrics []string
}

// PlayerSchema is the layout of player files:
// name,dribbles,prog_carries,final_third.
var PlayerSchema = Schema{
	ID:      "name",
	Metrics: []string{"dribbles", "prog_carries", "final_third"},
}

var (
	// ErrMissingColumn is returned when the header lacks a schema column.
	ErrMissingColumn = errors.New("csvfile: missing column")
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("csvfile: empty file")
)

// ParseError reports a metric cell that is not a number.
type ParseError struct {
	Line   int
	Column string
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csvfile: line %d column %q: cannot parse %q: %v", e.Line, e.Column, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads player records.
func Load(r io.Reader) ([]record.Record, error) {
	return LoadSchema(r, PlayerSchema)
}

// LoadSchema reads records, locating columns by header name. Extra columns
// are ignored.
func LoadSchema(r io.Reader, s Schema) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	idCol, ok := index[s.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, s.ID)
	}
	metricCols := make([]int, len(s.Metrics))
	for j, name := range s.Metrics {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		metricCols[j] = col
	}

	var records []record.Record
	metrics := make([]float64, len(metricCols))
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		for j, col := range metricCols {
			text := strings.TrimSpace(row[col])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Line: line, Column: s.Metrics[j], Text: text, Err: err}
			}
			metrics[j] = v
		}
		records = append(records, record.New(row[idCol], metrics...))
	}

	return records, nil
}

// Save writes player records.
func Save(w io.Writer, records []record.Record) error {
	return SaveSchema(w, records, PlayerSchema)
}

// SaveSchema writes a header row followed by one row per record.
func SaveSchema(w io.Writer, records []record.Record, s Schema) error {
	for i, rec := range records {
		if rec.Arity() != len(s.Metrics) {
			return &record.ArityError{Index: i, Expected: len(s.Metrics), Actual: rec.Arity()}
		}
	}

	cw := csv.NewWriter(w)

	header := append([]string{s.ID}, s.Metrics...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		row[0] = rec.ID()
		for j := range s.Metrics {
			row[j+1] = strconv.FormatFloat(rec.Metric(j), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// LoadFile reads player records from path.
func LoadFile(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// SaveFile writes player records to path, creating parent directories.
func SaveFile(path string, records []record.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Save(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Loader loads player records from a file path.
type Loader struct {
	Path string
}

// Load implements source.Loader.
func (l Loader) Load(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(l.Path)
}
