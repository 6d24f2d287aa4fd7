package connectors

import (
	"context"
	"fmt"
	"os"
	"time"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/connectors/export"
	"menuboard/internal/connectors/sheets"
	"menuboard/internal/sheet"
)

// SheetConnector fetches one raw export of the menu spreadsheet.
type SheetConnector interface {
	FetchExport(ctx context.Context) (internal.SheetExport, error)
}

// New picks the connector for SHEET_PROVIDER.
func New(ctx context.Context, cfg config.Config) (SheetConnector, error) {
	switch cfg.SheetProvider {
	case "export":
		return export.NewClient(cfg), nil
	case "sheets":
		return sheets.NewConnector(ctx, cfg)
	case "file":
		if err := cfg.Require("SHEET_FILE", cfg.SheetFile); err != nil {
			return nil, err
		}
		return NewFileConnector(cfg.SheetFile, ""), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.SheetProvider)
	}
}

// FileConnector reads an export saved on disk. The format is guessed from
// the extension unless given.
type FileConnector struct {
	Path   string
	Format string
}

func NewFileConnector(path, format string) *FileConnector {
	if format == "" {
		format = string(sheet.FormatFromPath(path))
	}
	return &FileConnector{Path: path, Format: format}
}

func (c *FileConnector) FetchExport(ctx context.Context) (internal.SheetExport, error) {
	if err := ctx.Err(); err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: %v", internal.ErrFetch, err)
	}
	body, err := os.ReadFile(c.Path)
	if err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: %v", internal.ErrFetch, err)
	}
	return internal.SheetExport{
		Provider:  "file",
		Format:    c.Format,
		Source:    c.Path,
		Body:      body,
		FetchedAt: time.Now().UTC(),
	}, nil
}
