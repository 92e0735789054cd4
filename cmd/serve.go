package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/brogergvhs/pgrwall/internal/art"
	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/downloader"
	"github.com/brogergvhs/pgrwall/internal/wallpaper"
	"github.com/brogergvhs/pgrwall/internal/webui"

	"github.com/spf13/cobra"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wallpaper web form",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logSvc, err := loadConfig(config.Options{Listen: flagListen})
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.ArtPath()); err != nil {
			logSvc.Warnf("No art record at %s yet. Run `pgrwall scrape` to fill the form.", cfg.ArtPath())
		}

		client, err := newHTTPClient(cfg, logSvc)
		if err != nil {
			return err
		}
		dl := downloader.New(client, cfg.Retries, logSvc)

		srv := webui.NewServer(webui.Options{
			Cache:        art.NewCache(cfg.ArtPath()),
			Composer:     wallpaper.NewComposer(dl, logSvc),
			WorkDir:      cfg.DataDir,
			ResourcesDir: cfg.ResourcesDir,
			DefaultColor: cfg.DefaultColor,
			Debug:        cfg.Debug,
			Log:          logSvc,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Serve(ctx, cfg.Listen)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "address to listen on (default from config, 127.0.0.1:8501)")
	rootCmd.AddCommand(serveCmd)
}
