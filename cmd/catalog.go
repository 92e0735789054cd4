package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/pgrwall/internal/catalog"
	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/providers"

	"github.com/spf13/cobra"
)

var flagCountLive bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the persisted character catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logSvc, err := loadConfig(config.Options{})
		if err != nil {
			return err
		}

		if flagCountLive {
			client, err := newHTTPClient(cfg, logSvc)
			if err != nil {
				return err
			}

			n, err := newWikiScraper(client, cfg, logSvc).CountCharacters(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Live characters: %d\n", n)
			return nil
		}

		cat, err := catalog.NewStore(cfg.CatalogPath()).Load()
		if errors.Is(err, catalog.ErrNoCatalog) {
			fmt.Printf("No catalog at %s. Run `pgrwall scrape` first.\n", cfg.CatalogPath())
			return nil
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "CHARACTER\tGALLERY")
		for _, name := range providers.SortedKeys(cat) {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", name, cat[name])
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}

		fmt.Printf("\n%d characters in %s\n", len(cat), cfg.CatalogPath())
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&flagCountLive, "count-live", false, "print the live character count from the list page")
	rootCmd.AddCommand(catalogCmd)
}
