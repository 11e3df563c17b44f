package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"tripcal/internal/calendar"
	"tripcal/internal/cli"
	"tripcal/internal/core"
	"tripcal/internal/ics"
	applog "tripcal/internal/log"
	"tripcal/internal/overlay"
	overlaymem "tripcal/internal/overlay/memory"
	"tripcal/internal/services"
	"tripcal/internal/storage"
)

type options struct {
	docPath  string
	format   string
	today    string
	dbPath   string
	budget   string
	currency string
	stamp    string
}

func main() {
	var opts options
	flag.StringVar(&opts.docPath, "doc", "", "Path to the trip document (.json, .yaml, .yml)")
	flag.StringVar(&opts.format, "format", "json", "Output format: json, ics or budget")
	flag.StringVar(&opts.today, "today", "", "Mark this date (YYYY-MM-DD) as today")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database holding user edits (optional)")
	flag.StringVar(&opts.budget, "budget", "", "Override the document budget total")
	flag.StringVar(&opts.currency, "currency", "USD", "Reference currency when the document has no budget")
	flag.StringVar(&opts.stamp, "stamp", "", "DTSTAMP for -format ics (RFC 3339); defaults to now")
	flag.Parse()

	cli.LoadEnvFile()
	// stdout carries the output, logs go to stderr
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Stderr,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logger.Error("tripcal-cli failed", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if strings.TrimSpace(opts.docPath) == "" {
		return errors.New("-doc is required")
	}
	if opts.today != "" {
		if _, ok := calendar.ParseDay(opts.today); !ok {
			return fmt.Errorf("-today %q: %w", opts.today, core.ErrInvalidDate)
		}
	}
	var total *float64
	if opts.budget != "" {
		cents, err := core.ParseDecimalToCents(opts.budget)
		if err != nil {
			return fmt.Errorf("-budget %q: %w", opts.budget, err)
		}
		v := core.Money{Cents: cents}.Amount()
		total = &v
	}

	stamp := time.Now()
	if opts.stamp != "" {
		t, err := time.Parse(time.RFC3339, opts.stamp)
		if err != nil {
			return fmt.Errorf("-stamp %q: %w", opts.stamp, core.ErrInvalidDate)
		}
		stamp = t
	}

	var store overlay.Store = overlaymem.New()
	if opts.dbPath != "" {
		repo, err := storage.NewSQLiteRepository(opts.dbPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		store = repo
	}

	svc := services.NewItineraryService(services.FileSource{Path: opts.docPath}, store, services.Options{
		ReferenceCurrency: opts.currency,
	})

	switch opts.format {
	case "json":
		days, err := svc.Calendar(ctx, opts.today)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(days)

	case "ics":
		doc, _, err := svc.Document(ctx)
		if err != nil {
			return err
		}
		days, err := svc.Calendar(ctx, "")
		if err != nil {
			return err
		}
		return ics.Write(out, days, ics.Options{Name: doc.TripName, Stamp: stamp})

	case "budget":
		summary, err := svc.Budget(ctx, total)
		if err != nil {
			return err
		}
		return writeBudget(out, summary)

	default:
		return fmt.Errorf("unknown -format %q: must be json, ics or budget", opts.format)
	}
}

func writeBudget(out io.Writer, s core.BudgetSummary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Budget\t%.2f %s\n", s.Budget, s.Currency)
	fmt.Fprintf(tw, "Spent\t%.2f %s\n", s.Total, s.Currency)
	fmt.Fprintf(tw, "Remaining\t%.2f %s\n", s.Remaining, s.Currency)
	fmt.Fprintf(tw, "Used\t%.1f%%\n", s.PercentUsed)
	fmt.Fprintf(tw, "Items\t%d\n", s.ItemCount)
	for _, c := range s.ByCurrency {
		fmt.Fprintf(tw, "  %s\t%.2f\n", c.Currency, c.Amount)
	}
	if len(s.Unconverted) > 0 {
		fmt.Fprintf(tw, "Unconverted\t%s\n", strings.Join(s.Unconverted, ", "))
	}
	return tw.Flush()
}
