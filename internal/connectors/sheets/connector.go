// Package sheets reads the menu through the Google Sheets API.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"menuboard/internal"
	"menuboard/internal/config"
)

type Connector struct {
	service       *gsheets.Service
	spreadsheetID string
	readRange     string
}

// NewConnector authenticates with SHEETS_API_KEY when set (public sheets),
// otherwise with the OAuth client and refresh token.
func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("SHEET_ID", cfg.SheetID); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.SheetsAPIKey) != "" {
		opts = append(opts, option.WithAPIKey(cfg.SheetsAPIKey))
	} else {
		if err := cfg.Require("SHEETS_CLIENT_ID", cfg.SheetsClientID); err != nil {
			return nil, err
		}
		if err := cfg.Require("SHEETS_CLIENT_SECRET", cfg.SheetsClientSecret); err != nil {
			return nil, err
		}
		if err := cfg.Require("SHEETS_REFRESH_TOKEN", cfg.SheetsRefreshToken); err != nil {
			return nil, err
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.SheetsClientID,
			ClientSecret: cfg.SheetsClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gsheets.SpreadsheetsReadonlyScope},
		}
		tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.SheetsRefreshToken})
		opts = append(opts, option.WithTokenSource(tokenSource))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc, spreadsheetID: cfg.SheetID, readRange: cfg.SheetName}, nil
}

// FetchExport reads the whole sheet as formatted values and returns it in
// the "values" export format.
func (c *Connector) FetchExport(ctx context.Context) (internal.SheetExport, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: sheets api: %v", internal.ErrFetch, err)
	}

	body, err := json.Marshal(struct {
		Range  string          `json:"range"`
		Values [][]interface{} `json:"values"`
	}{Range: resp.Range, Values: resp.Values})
	if err != nil {
		return internal.SheetExport{}, fmt.Errorf("%w: encode values: %v", internal.ErrFetch, err)
	}

	return internal.SheetExport{
		Provider:  "sheets",
		Format:    "values",
		Source:    "sheets:" + c.spreadsheetID + "/" + c.readRange,
		Body:      body,
		FetchedAt: time.Now().UTC(),
	}, nil
}
