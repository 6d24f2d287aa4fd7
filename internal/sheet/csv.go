package sheet

import "strings"

// ParseCSV splits delimited text into rows of fields. Quotes toggle quoted
// mode and a doubled quote inside a quoted field is a literal quote. CR, LF
// and CRLF all end a row; blank lines are skipped.
func ParseCSV(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
	)

	endRow := func() {
		if field.Len() == 0 && len(row) == 0 && !quoted {
			return
		}
		row = append(row, field.String())
		rows = append(rows, row)
		row = nil
		field.Reset()
		quoted = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(text) && text[i+1] == '"':
			field.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
			quoted = false
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	endRow()

	return rows
}

// WriteCSV writes rows with the quoting rule ParseCSV reverses: fields with
// a comma, quote, CR or LF are quoted and inner quotes doubled. A row made of
// one empty field is written as "" so it survives the blank-line rule.
func WriteCSV(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		if len(row) == 1 && row[0] == "" {
			b.WriteString(`""`)
			b.WriteByte('\n')
			continue
		}
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(f, ",\"\r\n") {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(f, `"`, `""`))
				b.WriteByte('"')
			} else {
				b.WriteString(f)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
