package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *gvizTable `json:"table"`
}

type gvizTable struct {
	Cols []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Type  string `json:"type"`
	} `json:"cols"`
	Rows []struct {
		C []*gvizCell `json:"c"`
	} `json:"rows"`
}

type gvizCell struct {
	V any     `json:"v"`
	F *string `json:"f"`
}

// ExtractJSONObject returns the first balanced {...} object in text, skipping
// braces that appear inside JSON strings. The visualization endpoint wraps
// its payload in a JavaScript callback, so the object sits between arbitrary
// prefix and suffix text.
func ExtractJSONObject(text []byte) ([]byte, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, c := range text {
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	if start < 0 {
		return nil, errors.New("no JSON object found")
	}
	return nil, errors.New("unterminated JSON object")
}

// ParseGViz reads the visualization query export. When the sheet has no
// detected header row every column label is blank and row 0 is used instead.
func ParseGViz(body []byte) (Table, error) {
	payload, err := ExtractJSONObject(body)
	if err != nil {
		return Table{}, parseErr(FormatGViz, err)
	}

	var resp gvizResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Table{}, parseErr(FormatGViz, err)
	}
	if strings.EqualFold(resp.Status, "error") {
		msg := "query failed"
		if len(resp.Errors) > 0 {
			msg = firstNonEmpty(resp.Errors[0].DetailedMessage, resp.Errors[0].Message, resp.Errors[0].Reason)
		}
		return Table{}, parseErr(FormatGViz, errors.New(msg))
	}
	if resp.Table == nil {
		return Table{}, parseErr(FormatGViz, errors.New("missing table"))
	}

	header := make([]string, len(resp.Table.Cols))
	labelled := false
	for i, col := range resp.Table.Cols {
		header[i] = strings.TrimSpace(col.Label)
		if header[i] != "" {
			labelled = true
		}
	}

	rows := make([][]string, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		row := make([]string, len(header))
		for i, cell := range r.C {
			if i >= len(row) {
				break
			}
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}

	if !labelled {
		if len(rows) == 0 {
			return Table{}, nil
		}
		return FromMatrix(rows), nil
	}
	return Table{Header: header, Rows: rows}, nil
}

func cellString(cell *gvizCell) string {
	if cell == nil || cell.V == nil {
		return ""
	}
	switch v := cell.V.(type) {
	case string:
		return v
	case float64:
		return numberCell(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		if cell.F != nil {
			return *cell.F
		}
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
