// Package sheet turns spreadsheet exports into a header row plus data rows.
package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"menuboard/internal"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatGViz   Format = "gviz"
	FormatHTML   Format = "html"
	FormatXLSX   Format = "xlsx"
	FormatValues Format = "values"
)

// Table is a parsed export. Header holds column labels in order; every data
// row is positional against Header and may be shorter or longer than it.
type Table struct {
	Header []string
	Rows   [][]string
}

var reGroupedLike = regexp.MustCompile(`^-?\d{1,3}\.\d{3}$`)

// numberCell renders a typed numeric cell. A value such as 2.125 would read
// as "2 thousand 125" to the money parser, so a trailing zero keeps it a
// decimal: "2.1250".
func numberCell(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if reGroupedLike.MatchString(s) {
		s += "0"
	}
	return s
}

// FromMatrix treats row 0 as the header.
func FromMatrix(rows [][]string) Table {
	if len(rows) == 0 {
		return Table{}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return Table{Header: header, Rows: rows[1:]}
}

// Records returns each row keyed by lower-cased, trimmed header label. The
// first column wins when two labels collide.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			key := strings.ToLower(strings.TrimSpace(h))
			if _, exists := rec[key]; exists {
				continue
			}
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// Parse dispatches on the export format. Malformed and empty bodies come
// back wrapped in internal.ErrParse.
func Parse(format Format, body []byte) (Table, error) {
	var (
		table Table
		err   error
	)
	switch format {
	case FormatCSV:
		table = FromMatrix(ParseCSV(string(body)))
	case FormatGViz:
		table, err = ParseGViz(body)
	case FormatHTML:
		table, err = ParseHTML(body)
	case FormatXLSX:
		table, err = ParseXLSX(body, "")
	case FormatValues:
		table, err = ParseValues(body)
	default:
		return Table{}, fmt.Errorf("%w: unsupported format %q", internal.ErrParse, format)
	}
	if err != nil {
		return Table{}, err
	}
	if len(table.Header) == 0 {
		return Table{}, fmt.Errorf("%w: %s export has no header row", internal.ErrParse, format)
	}
	return table, nil
}

func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return FormatHTML
	case strings.HasSuffix(lower, ".json"), strings.HasSuffix(lower, ".js"):
		return FormatGViz
	default:
		return FormatCSV
	}
}

func parseErr(format Format, err error) error {
	return fmt.Errorf("%w: %s: %v", internal.ErrParse, format, err)
}
