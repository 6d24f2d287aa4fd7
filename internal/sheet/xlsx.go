package sheet

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads one worksheet of an xlsx export. With an empty sheetName
// the first worksheet that has any rows is used. Leading blank rows are
// dropped so the first populated row is the header.
func ParseXLSX(content []byte, sheetName string) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Table{}, parseErr(FormatXLSX, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheetName != "" {
		sheets = []string{sheetName}
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			if sheetName != "" {
				return Table{}, parseErr(FormatXLSX, err)
			}
			continue
		}
		for len(rows) > 0 && allBlank(rows[0]) {
			rows = rows[1:]
		}
		if len(rows) == 0 {
			continue
		}
		return FromMatrix(rows), nil
	}

	return Table{}, parseErr(FormatXLSX, errors.New("workbook has no populated sheet"))
}
