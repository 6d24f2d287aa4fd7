package sheet

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reSpaces = regexp.MustCompile(`\s+`)

// ParseHTML reads the "publish to web" HTML export. The first table with at
// least one non-empty row is used; its first non-empty row is the header.
// Row-number cells, the A/B/C column bar and frozen-row spacers are skipped.
func ParseHTML(body []byte) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Table{}, parseErr(FormatHTML, err)
	}

	var matrix [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.HasClass("freezebar") {
				return
			}
			cells := []string{}
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, normalizeSpaces(td.Text()))
			})
			if len(cells) == 0 {
				tr.Find("th").Each(func(_ int, th *goquery.Selection) {
					cells = append(cells, normalizeSpaces(th.Text()))
				})
			}
			if allBlank(cells) || isColumnLetters(cells) {
				return
			}
			matrix = append(matrix, cells)
		})
		return len(matrix) == 0
	})

	if len(matrix) == 0 {
		return Table{}, parseErr(FormatHTML, errors.New("no table rows"))
	}
	return FromMatrix(matrix), nil
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// isColumnLetters matches the spreadsheet column bar: A, B, C... in order.
func isColumnLetters(cells []string) bool {
	seen := 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		if c != columnName(seen) {
			return false
		}
		seen++
	}
	return seen > 0
}

func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
