package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/hupe1980/statclust"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatText prints one line per assignment.
	FormatText OutputFormat = "text"
	// FormatYAML outputs as YAML
	FormatYAML OutputFormat = "yaml"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatTable outputs as formatted table
	FormatTable OutputFormat = "table"
)

var (
	primary     = lipgloss.Color("#00ff9f")
	dim         = lipgloss.Color("#6e7681")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(dim)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primary)
)

// resultView is the serialized form of a clustering result.
type resultView struct {
	K           int                    `json:"k" yaml:"k"`
	Iterations  int                    `json:"iterations" yaml:"iterations"`
	Converged   bool                   `json:"converged" yaml:"converged"`
	Sizes       []int                  `json:"sizes" yaml:"sizes"`
	Centroids   [][]float64            `json:"centroids" yaml:"centroids"`
	Assignments []statclust.Assignment `json:"assignments" yaml:"assignments"`
}

func newResultView(r *statclust.Result) resultView {
	return resultView{
		K:           r.K,
		Iterations:  r.Iterations,
		Converged:   r.Converged,
		Sizes:       r.Sizes,
		Centroids:   r.RawCentroids(),
		Assignments: r.Assignments(),
	}
}

func writeStructured(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeResult prints a result in the requested format.
func writeResult(w io.Writer, format OutputFormat, r *statclust.Result) error {
	switch format {
	case FormatText, "":
		for _, a := range r.Assignments() {
			if _, err := fmt.Fprintf(w, "Player %s -> Cluster %d\n", a.ID, a.Cluster); err != nil {
				return err
			}
		}
		return nil
	case FormatTable:
		return writeResultTable(w, r)
	default:
		return writeStructured(w, format, newResultView(r))
	}
}

func styledTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func writeResultTable(w io.Writer, r *statclust.Result) error {
	summary := styledTable("cluster", "size", "centroid")
	for j, c := range r.RawCentroids() {
		summary.Row(strconv.Itoa(j), strconv.Itoa(r.Sizes[j]), formatVector(c))
	}

	members := styledTable("id", "cluster")
	for _, a := range r.Assignments() {
		members.Row(a.ID, strconv.Itoa(a.Cluster))
	}

	status := "converged"
	if !r.Converged {
		status = "iteration cap reached"
	}
	title := titleStyle.Render(fmt.Sprintf("k=%d", r.K)) + " " +
		lipgloss.NewStyle().Foreground(dim).Render(fmt.Sprintf("[%d iterations, %s]", r.Iterations, status))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, title, summary.String(), members.String()))
	return err
}

// sweepRow summarizes one run of a sweep.
type sweepRow struct {
	K          int   `json:"k" yaml:"k"`
	Iterations int   `json:"iterations" yaml:"iterations"`
	Converged  bool  `json:"converged" yaml:"converged"`
	Sizes      []int `json:"sizes" yaml:"sizes"`
}

func writeSweep(w io.Writer, format OutputFormat, results []*statclust.Result) error {
	rows := make([]sweepRow, len(results))
	for i, r := range results {
		rows[i] = sweepRow{K: r.K, Iterations: r.Iterations, Converged: r.Converged, Sizes: r.Sizes}
	}

	switch format {
	case FormatText, "":
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "k=%d iterations=%d converged=%t sizes=%v\n", r.K, r.Iterations, r.Converged, r.Sizes); err != nil {
				return err
			}
		}
		return nil
	case FormatTable:
		t := styledTable("k", "iterations", "converged", "sizes")
		for _, r := range rows {
			t.Row(strconv.Itoa(r.K), strconv.Itoa(r.Iterations), strconv.FormatBool(r.Converged), fmt.Sprint(r.Sizes))
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return writeStructured(w, format, rows)
	}
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 3, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
