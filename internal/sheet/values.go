package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseValues reads a Sheets API value range, either the full
// {"range": ..., "values": [[...]]} object or the bare matrix.
func ParseValues(body []byte) (Table, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Table{}, parseErr(FormatValues, fmt.Errorf("empty body"))
	}

	var matrix [][]any
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &matrix); err != nil {
			return Table{}, parseErr(FormatValues, err)
		}
	} else {
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(trimmed, &vr); err != nil {
			return Table{}, parseErr(FormatValues, err)
		}
		matrix = vr.Values
	}

	rows := make([][]string, 0, len(matrix))
	for _, r := range matrix {
		row := make([]string, len(r))
		for i, v := range r {
			switch t := v.(type) {
			case nil:
			case string:
				row[i] = t
			case float64:
				row[i] = numberCell(t)
			case bool:
				row[i] = strconv.FormatBool(t)
			default:
				row[i] = fmt.Sprint(t)
			}
		}
		rows = append(rows, row)
	}
	return FromMatrix(rows), nil
}
