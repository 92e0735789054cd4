package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/providers/wiki"
	"github.com/brogergvhs/pgrwall/internal/ui"
	"github.com/brogergvhs/pgrwall/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagDataDir      string
)

var rootCmd = &cobra.Command{
	Use:   "pgrwall",
	Short: "Punishing: Gray Raven phone wallpaper generator",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "folder holding the catalog and art record")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig merges the active profile with the persistent flags and opts.
func loadConfig(opts config.Options) (*config.Config, *ui.Logger, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = flagDebug
	if opts.DataDir == "" {
		opts.DataDir = flagDataDir
	}

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return nil, nil, err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s", usedPath)

	return cfg, logSvc, nil
}

func newHTTPClient(cfg *config.Config, logSvc *ui.Logger) (*http.Client, error) {
	return util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent:         util.PickUserAgent(cfg.UserAgent),
		Cookie:            cfg.Cookie,
		CookieFile:        cfg.CookieFile,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CloudflareBypass:  cfg.CloudflareBypass,
		DebugLogger:       logSvc,
	})
}

func newWikiScraper(client *http.Client, cfg *config.Config, logSvc *ui.Logger) *wiki.Scraper {
	return wiki.NewScraper(client, wiki.Options{
		ListURL: cfg.ListURL,
		SiteURL: cfg.SiteURL,
		Retries: cfg.Retries,
		Log:     logSvc,
	})
}
