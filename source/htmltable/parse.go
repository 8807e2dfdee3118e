package htmltable

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/statclust/record"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMissingMetric is returned under MissingFail for unusable metric cells.
var ErrMissingMetric = errors.New("htmltable: missing metric")

// MissingMetricError locates an unusable metric cell.
type MissingMetricError struct {
	Row    int // zero-based data row
	Column int // td index
	Text   string
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("htmltable: row %d cell %d: cannot parse %q as a number", e.Row, e.Column, e.Text)
}

func (e *MissingMetricError) Unwrap() error { return ErrMissingMetric }

// Parse extracts records from an HTML document.
func Parse(r io.Reader, opts ...Option) ([]record.Record, error) {
	return parse(r, applyOptions(opts))
}

func parse(r io.Reader, o options) ([]record.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmltable: parse document: %w", err)
	}

	var records []record.Record
	metrics := make([]float64, len(o.columns.Metrics))
	row := 0

	for _, tr := range statsRows(doc) {
		if o.maxRows > 0 && len(records) >= o.maxRows {
			break
		}

		cells := cellTexts(tr)
		if len(cells) == 0 {
			continue
		}
		idx := row
		row++

		if o.columns.Name >= len(cells) {
			continue
		}
		name := strings.TrimSpace(cells[o.columns.Name])
		if name == "" {
			continue
		}

		for j, col := range o.columns.Metrics {
			text := ""
			if col < len(cells) {
				text = cells[col]
			}
			v, ok := parseMetric(text)
			if !ok {
				if o.policy == MissingFail {
					return nil, &MissingMetricError{Row: idx, Column: col, Text: text}
				}
				v = 0
			}
			metrics[j] = v
		}

		records = append(records, record.New(name, metrics...))
	}

	return records, nil
}

func parseMetric(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// statsRows returns the tr children of tbody elements of stats tables, in
// document order.
func statsRows(doc *html.Node) []*html.Node {
	var rows []*html.Node
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.Table || !hasClass(n, "stats_table") {
			continue
		}
		for body := range n.ChildNodes() {
			if body.Type != html.ElementNode || body.DataAtom != atom.Tbody {
				continue
			}
			for tr := range body.ChildNodes() {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for td := range tr.ChildNodes() {
		if td.Type == html.ElementNode && td.DataAtom == atom.Td {
			cells = append(cells, textContent(td))
		}
	}
	return cells
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	}
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return slices.Contains(strings.Fields(a.Val), class)
		}
	}
	return false
}
