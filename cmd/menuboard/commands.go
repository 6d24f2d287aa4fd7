package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"menuboard/internal/app"
	"menuboard/internal/pipeline"
	"menuboard/internal/publish"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Fetch the sheet once and print the menu as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed, err := fetchFeed(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), pipeline.NewMenuDocument(feed))
	},
}

var promosCmd = &cobra.Command{
	Use:   "promos",
	Short: "Fetch the sheet once and list the signage promotions",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed, err := fetchFeed(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(feed.Promotions) == 0 {
			fmt.Fprintln(out, "SIN PROMOS ACTIVAS")
			return nil
		}
		for i, it := range feed.Promotions {
			card := pipeline.NewPromoCard(it)
			fmt.Fprintf(out, "%2d. %s · %s", i+1, card.Title, card.Name)
			if card.Price.Main != "" {
				fmt.Fprintf(out, " · %s", card.Price.Main)
			}
			if card.Price.Struck != "" {
				fmt.Fprintf(out, " (antes %s)", card.Price.Struck)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var (
	runInput  string
	runFormat string
	runOut    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Normalize a saved export without touching the database",
	Example: `  menuboard run --input ./menu.csv
  menuboard run --input ./export.json --format gviz --out ./out/menu.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(runInput) == "" {
			return fmt.Errorf("--input is required")
		}
		table, err := pipeline.ExtractTableFromInput(runFormat, runInput)
		if err != nil {
			return err
		}
		feed := pipeline.NewFeedBuilder(cfg).Build(table)
		feed.FetchedAt = time.Now().UTC()
		if runOut != "" {
			if err := pipeline.ExportMenuToXLSX(feed, runOut); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run done items=%d promos=%d output=%s\n", len(feed.Items), len(feed.Promotions), runOut)
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), pipeline.NewMenuDocument(feed))
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch the sheet once and write the menu workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := exportOut
		if strings.TrimSpace(out) == "" {
			out = filepath.Join(cfg.OutputDir, "menu.xlsx")
		}
		feed, err := fetchFeed(cmd.Context())
		if err != nil {
			return err
		}
		if err := pipeline.ExportMenuToXLSX(feed, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d items to %s\n", len(feed.Items), out)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Fetch the sheet once and upload menu.json and menu.xlsx to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := publish.NewS3Publisher(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		feed, err := fetchFeed(cmd.Context())
		if err != nil {
			return err
		}
		keys, err := pub.Publish(cmd.Context(), feed)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s\n", cfg.S3Bucket, k)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signage loop and the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "path to a saved export")
	runCmd.Flags().StringVar(&runFormat, "format", "", "csv|gviz|html|xlsx|values (default: from extension)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write an xlsx instead of printing JSON")

	exportCmd.Flags().StringVar(&exportOut, "out", "", "output xlsx path (default OUTPUT_DIR/menu.xlsx)")
}

// fetchFeed runs a single fetch cycle against the configured source.
func fetchFeed(ctx context.Context) (pipeline.Feed, error) {
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return pipeline.Feed{}, err
	}
	defer a.Close()
	return a.Processor.Refresh(ctx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
