package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/pgrwall/internal/art"
	"github.com/brogergvhs/pgrwall/internal/catalog"
	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/ui"
	"github.com/brogergvhs/pgrwall/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagForce      bool
	flagWorkers    int
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Refresh the character catalog and scrape every coating art URL into the art record",
		RunE:  runScrape,
	}

	scrapeCmd.Flags().BoolVar(&flagForce, "force", false, "rebuild the catalog even when its size matches the live roster")
	scrapeCmd.Flags().IntVar(&flagWorkers, "workers", 0, "characters scraped in parallel (default from config)")

	scrapeCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	scrapeCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	scrapeCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, logSvc, err := loadConfig(config.Options{
		Workers:    flagWorkers,
		Cookie:     flagCookie,
		CookieFile: flagCookieFile,
		UserAgent:  flagUserAgent,
	})
	if err != nil {
		return err
	}

	if cfg.Debug {
		fmt.Println("Full config:")
		cfg.Print()
		fmt.Println()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("cannot create data folder: %w", err)
	}

	client, err := newHTTPClient(cfg, logSvc)
	if err != nil {
		return err
	}

	util.SetupInterruptHandler(filepath.Dir(cfg.CatalogPath()), filepath.Dir(cfg.ArtPath()))

	start := time.Now()

	pm := ui.NewProgressManager()
	var handle *ui.ProgressHandle
	stats := &ui.Stats{}

	job := &scrapeJob{
		cfg:   cfg,
		src:   newWikiScraper(client, cfg, logSvc),
		force: flagForce,
		log:   logSvc,
		OnCatalog: func(res catalog.Result) {
			handle = pm.Register("Coatings")
			handle.SetTotal(len(res.Catalog))
		},
		OnCharacter: func(_ string, coatings int, err error) {
			handle.CharacterDone(coatings, err)
			if err != nil {
				stats.Failed.Add(1)
				return
			}
			stats.Characters.Add(1)
			stats.Coatings.Add(int64(coatings))
		},
	}

	summary, err := job.Run(cmd.Context())
	if handle != nil {
		handle.MarkDone()
	}
	pm.Close()
	if err != nil {
		return err
	}

	printScrapeSummary(stats, summary, cfg.ArtPath(), time.Since(start))

	return nil
}

// scrapeSource is the wiki seen from both scrape stages.
type scrapeSource interface {
	catalog.Source
	art.CoatingSource
}

type scrapeLogger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

// scrapeJob reconciles the catalog and writes the art record for it.
type scrapeJob struct {
	cfg   *config.Config
	src   scrapeSource
	force bool
	log   scrapeLogger

	// OnCatalog runs once the catalog to scrape is known.
	OnCatalog   func(res catalog.Result)
	OnCharacter func(character string, coatings int, err error)
}

// Run leaves the previous art record in place when no character could be
// scraped; otherwise the record is replaced, possibly with a partial one.
func (j *scrapeJob) Run(ctx context.Context) (art.Summary, error) {
	res, err := catalog.Reconcile(ctx, catalog.NewStore(j.cfg.CatalogPath()), j.src, j.force, j.log)
	if err != nil {
		return art.Summary{}, err
	}
	if res.Rebuilt {
		j.log.Infof("Catalog rebuilt: %s", j.cfg.CatalogPath())
	}
	if j.OnCatalog != nil {
		j.OnCatalog(res)
	}

	scr := art.NewScraper(j.src, j.cfg.Workers, j.log)
	scr.OnCharacter = j.OnCharacter

	record, summary, err := scr.Run(ctx, res.Catalog)
	if err != nil {
		return summary, fmt.Errorf("scrape interrupted: %w", err)
	}

	if len(summary.Succeeded) == 0 && len(res.Catalog) > 0 {
		return summary, errNothingScraped
	}

	if err := art.SaveRecord(j.cfg.ArtPath(), record); err != nil {
		return summary, err
	}

	return summary, nil
}

var errNothingScraped = errors.New("no character could be scraped; art record left untouched")

func printScrapeSummary(stats *ui.Stats, summary art.Summary, path string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Scrape Summary:")
	fmt.Printf("Characters: %d\n", stats.Characters.Load())
	fmt.Printf("Coatings:   %d\n", stats.Coatings.Load())
	fmt.Printf("Failed:     %d\n", stats.Failed.Load())
	fmt.Printf("Time:       %s\n", elapsed.Round(time.Second))
	fmt.Printf("Record:     %s\n", path)

	if summary.Partial() {
		fmt.Println("\nThe record is partial. These characters were skipped:")
		for _, f := range summary.Failed {
			fmt.Printf("  %s: %v\n", f.Character, f.Err)
		}
		return
	}

	fmt.Println("\nAll done.")
}
