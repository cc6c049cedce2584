package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/donnegro/comercial/backend-go/internal/app"
	"github.com/donnegro/comercial/backend-go/internal/config"
	"github.com/donnegro/comercial/backend-go/internal/csvimport"
	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/service"
	"github.com/donnegro/comercial/backend-go/internal/storage"
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Path to a CSV or XLSX cost list",
		},
		&cli.StringFlag{
			Name:  "drive-file-id",
			Usage: "Google Drive file ID of the cost list",
		},
		&cli.StringFlag{
			Name:  "archive-key",
			Usage: "Object storage key of a previously archived cost list",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "update (actualizar) or create (importar)",
			Value: string(domain.ImportModeUpdate),
		},
	}
}

func quoteCommand() *cli.Command {
	percent := func(name, usage string) cli.Flag {
		return &cli.StringFlag{Name: name, Usage: usage}
	}

	return &cli.Command{
		Name:  "quote",
		Usage: "Print cash price and installment plans for a cost",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cost", Usage: "Product cost in guaranies", Required: true},
			percent("margin", "Margin percent (default from PRICING_DEFAULT_MARGIN)"),
			percent("interest-6", "6 month interest percent"),
			percent("interest-12", "12 month interest percent"),
			percent("interest-15", "15 month interest percent"),
			percent("interest-18", "18 month interest percent"),
		},
		Action: func(c *cli.Context) error {
			d := app.Defaults(config.Load().Pricing)

			var in pricing.Input
			var err error
			if in.Cost, err = decimalFlag(c, "cost", decimal.Zero); err != nil {
				return err
			}
			if in.MarginPercent, err = decimalFlag(c, "margin", d.MarginPercent); err != nil {
				return err
			}
			if in.Interest6, err = decimalFlag(c, "interest-6", d.Interest6); err != nil {
				return err
			}
			if in.Interest12, err = decimalFlag(c, "interest-12", d.Interest12); err != nil {
				return err
			}
			if in.Interest15, err = decimalFlag(c, "interest-15", d.Interest15); err != nil {
				return err
			}
			if in.Interest18, err = decimalFlag(c, "interest-18", d.Interest18); err != nil {
				return err
			}

			printQuote(c.App.Writer, pricing.Calculate(in))
			return nil
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Parse a cost list and show how it matches the catalog",
		Flags: append(sourceFlags(), &cli.BoolFlag{
			Name:  "json",
			Usage: "Print the preview as JSON",
		}),
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				preview, err := loadPreview(ctx, c, a)
				if err != nil {
					return err
				}

				if c.Bool("json") {
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(preview)
				}
				printPreview(c.App.Writer, preview)
				return nil
			})
		},
	}
}

func commitCommand() *cli.Command {
	return &cli.Command{
		Name:  "commit",
		Usage: "Preview a cost list and write it to the catalog",
		Flags: append(sourceFlags(), &cli.BoolFlag{
			Name:  "yes",
			Usage: "Write the changes; without it only the preview is printed",
		}),
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				preview, err := loadPreview(ctx, c, a)
				if err != nil {
					return err
				}
				printPreview(c.App.Writer, preview)

				if !c.Bool("yes") {
					fmt.Fprintln(c.App.Writer, "\ndry run: pass --yes to write these changes")
					return nil
				}

				res, err := a.ImportService.Commit(ctx, service.CommitRequest{
					Mode:       preview.Mode,
					SourceName: preview.SourceName,
					Candidates: preview.Candidates,
					OnProgress: func(p csvimport.Progress) {
						fmt.Fprintf(c.App.Writer, "batch %d/%d: %d/%d rows (%d%%)\n", p.Batch, p.Batches, p.Processed, p.Total, p.Percent)
					},
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(c.App.Writer, "\n%s: %d ok, %d failed of %d\n", domain.ImportModeLabel(res.Mode), res.Succeeded, res.Failed, res.Total)
				for _, re := range res.Errors {
					fmt.Fprintf(c.App.ErrWriter, "  line %d %s: %s\n", re.Line, re.Name, re.Message)
				}
				return nil
			})
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recent import runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				runs, err := a.ImportService.ListRuns(ctx, c.Int("limit"))
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTARTED\tMODE\tSOURCE\tSTATUS\tOK\tFAILED\tTOTAL")
				for _, r := range runs {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
						r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Mode, r.SourceName, r.Status, r.Succeeded, r.Failed, r.Total)
				}
				return w.Flush()
			})
		},
	}
}

func archivesCommand() *cli.Command {
	return &cli.Command{
		Name:  "archives",
		Usage: "List archived cost lists",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				archives, err := a.ImportService.ListArchives(ctx)
				if err != nil {
					return err
				}
				printArchives(c.App.Writer, archives)
				return nil
			})
		},
	}
}

func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.New(c.Context, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(c.Context, a)
}

func loadPreview(ctx context.Context, c *cli.Context, a *app.App) (*domain.ImportPreview, error) {
	mode, ok := domain.ParseImportMode(c.String("mode"))
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", c.String("mode"))
	}

	if key := c.String("archive-key"); key != "" {
		return a.ImportService.PreviewArchived(ctx, key, mode)
	}

	req := service.UploadRequest{Mode: mode}
	switch {
	case c.String("drive-file-id") != "":
		if a.Drive == nil {
			return nil, fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON is not set")
		}
		name, data, err := a.Drive.Fetch(ctx, c.String("drive-file-id"))
		if err != nil {
			return nil, err
		}
		req.Name, req.Data = name, data
	case c.String("file") != "":
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return nil, fmt.Errorf("read cost list: %w", err)
		}
		req.Name, req.Data = filepath.Base(c.String("file")), data
	default:
		return nil, fmt.Errorf("one of --file, --drive-file-id or --archive-key is required")
	}

	return a.ImportService.PreviewUpload(ctx, req)
}

func decimalFlag(c *cli.Context, name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if !c.IsSet(name) {
		return fallback, nil
	}
	v, err := decimal.NewFromString(c.String(name))
	if err != nil || v.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s must be a non-negative number", name)
	}
	return v, nil
}

func printQuote(out io.Writer, res pricing.Result) {
	fmt.Fprintf(out, "Contado: %s\n", pricing.FormatCurrency(res.CashPrice))
	for _, p := range res.AvailablePlans() {
		fmt.Fprintf(out, "%2d cuotas de %s (total %s)\n", p.Term, pricing.FormatCurrency(p.Installment), pricing.FormatCurrency(p.Total))
	}
}

func printPreview(out io.Writer, preview *domain.ImportPreview) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tNAME\tCOST\tMATCH\tCONFIDENCE\tPRODUCT")
	for _, cand := range preview.Candidates {
		product := "-"
		if cand.Product != nil {
			product = fmt.Sprintf("#%d %s", cand.Product.ID, cand.Product.Name)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f%%\t%s\n",
			cand.Row.Line, cand.Row.Name, cand.Row.Cost.String(), cand.MatchType, cand.Confidence*100, product)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%s: %d rows, %d matched, %d unmatched, %d dropped\n",
		domain.ImportModeLabel(preview.Mode), preview.ParsedRows, preview.Matched, preview.Unmatched, len(preview.Dropped))
	if preview.ArchiveKey != "" {
		fmt.Fprintf(out, "archived as %s\n", preview.ArchiveKey)
	}
}

func printArchives(out io.Writer, archives []storage.ObjectInfo) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSOURCE\tSIZE\tMODIFIED")
	for _, o := range archives {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", o.Key, storage.SourceName(o.Key), o.Size, o.LastModified.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
