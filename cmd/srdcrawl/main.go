package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/srdcrawl"
	"github.com/fwojciec/srdcrawl/crawl"
	"github.com/fwojciec/srdcrawl/fs"
	"github.com/fwojciec/srdcrawl/goquery"
	srdhttp "github.com/fwojciec/srdcrawl/http"
	"github.com/fwojciec/srdcrawl/rod"
	srdslog "github.com/fwojciec/srdcrawl/slog"
	"github.com/fwojciec/srdcrawl/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	SeedURL     string        `name:"seed-url" short:"s" env:"SRDCRAWL_SEED_URL" default:"${seed_url}" help:"URL to start crawling from"`
	OutputPath  string        `name:"output-path" short:"o" env:"SRDCRAWL_OUTPUT_PATH" default:"mm_srd_data.txt" help:"Text file to write entries to (overwritten)"`
	ScopePrefix string        `name:"scope-prefix" env:"SRDCRAWL_SCOPE_PREFIX" default:"${scope_prefix}" help:"Substring every crawled URL must contain"`
	Exclude     []string      `name:"exclude" short:"x" help:"URL substrings to skip; replaces the built-in list"`
	Concurrency int           `short:"c" default:"1" help:"Pages fetched at once (1 = depth-first in page order)"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Browser     bool          `short:"b" help:"Render pages with headless Chrome instead of plain HTTP"`
	DB          string        `name:"db" env:"SRDCRAWL_DB" help:"Also archive the crawl in this SQLite database"`
	Verbose     bool          `short:"v" help:"Log every fetch"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("srdcrawl"),
		kong.Description("Crawl the 5e SRD monster section and save each stat block as a text entry"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{
			"seed_url":     srdcrawl.DefaultSeedURL,
			"scope_prefix": srdcrawl.DefaultScopePrefix,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	scope := srdcrawl.NewScope(cli.ScopePrefix)
	if len(cli.Exclude) > 0 {
		scope.Exclude = cli.Exclude
	}
	if err := scope.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", srdcrawl.ErrorMessage(err))
		return err
	}

	// Open the archive before crawling so a bad path fails fast
	var archive *sqlite.Archive
	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			return err
		}
		defer db.Close()
		archive = sqlite.NewArchive(db, cli.SeedURL)
	}

	fetcher, err := newFetcher(cli)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	crawler := &crawl.Crawler{
		Fetcher:     srdslog.NewLoggingFetcher(fetcher, logger),
		Entries:     goquery.NewEntryExtractor(),
		Links:       goquery.NewLinkExtractor(),
		Scope:       scope,
		Concurrency: cli.Concurrency,
	}

	result, err := crawler.Crawl(ctx, cli.SeedURL, logProgress(logger))
	if errors.Is(err, context.Canceled) {
		logger.Warn("crawl interrupted, writing partial results")
	} else if err != nil {
		return err
	}

	// Partial results are written on interrupt.
	writeCtx := context.WithoutCancel(ctx)
	entries := result.Entries.Entries()

	w := srdslog.NewLoggingEntryWriter(fs.NewEntryWriter(cli.OutputPath), cli.OutputPath, logger)
	if err := w.WriteEntries(writeCtx, entries); err != nil {
		return fmt.Errorf("write %s: %w", cli.OutputPath, err)
	}

	if archive != nil {
		aw := srdslog.NewLoggingEntryWriter(archive, cli.DB, logger)
		if err := aw.WriteEntries(writeCtx, entries); err != nil {
			return fmt.Errorf("archive to %s: %w", cli.DB, err)
		}
		fmt.Fprintf(stdout, "Archived crawl %s to %s\n", archive.LastCrawlID(), cli.DB)
	}

	fmt.Fprintf(stdout, "Saved %d entries to %s (visited %d, failed %d)\n",
		len(entries), cli.OutputPath, result.Visited, result.Failed)

	return nil
}

// newFetcher returns the fetcher selected by the CLI flags.
func newFetcher(cli *CLI) (srdcrawl.Fetcher, error) {
	if cli.Browser {
		f, err := rod.NewFetcher(rod.WithTimeout(cli.Timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		return f, nil
	}
	return srdhttp.NewFetcher(srdhttp.WithTimeout(cli.Timeout)), nil
}

// logProgress reports crawl progress through logger.
func logProgress(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressFetched:
			logger.Info("page", "url", e.URL, "entries", e.Entries)
		case crawl.ProgressFailed:
			logger.Warn("skip", "url", e.URL, "err", e.Error)
		case crawl.ProgressFinished:
			logger.Info("crawl finished", "entries", e.Entries)
		}
	}
}
