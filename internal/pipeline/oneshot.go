package pipeline

import (
	"fmt"
	"os"

	"menuboard/internal"
	"menuboard/internal/sheet"
)

// ExtractTableFromInput parses an export saved on disk. An empty format is
// guessed from the file extension.
func ExtractTableFromInput(format string, input string) (sheet.Table, error) {
	if format == "" {
		format = string(sheet.FormatFromPath(input))
	}
	blob, err := os.ReadFile(input)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("%w: %v", internal.ErrFetch, err)
	}
	return sheet.Parse(sheet.Format(format), blob)
}
