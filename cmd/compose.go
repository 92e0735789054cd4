package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/pgrwall/internal/art"
	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/downloader"
	"github.com/brogergvhs/pgrwall/internal/providers"
	"github.com/brogergvhs/pgrwall/internal/util"
	"github.com/brogergvhs/pgrwall/internal/wallpaper"
	"github.com/brogergvhs/pgrwall/internal/webui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagCharacter  string
	flagCoating    string
	flagColor      string
	flagBackground string
	flagOut        string
	flagAutoColor  bool
)

func init() {
	composeCmd := &cobra.Command{
		Use:   "compose",
		Short: "Generate one wallpaper from the art record. Missing character or coating is asked interactively",
		RunE:  runCompose,
	}

	composeCmd.Flags().StringVar(&flagCharacter, "character", "", "character name as listed by the art record")
	composeCmd.Flags().StringVar(&flagCoating, "coating", "", "coating name of the character")
	composeCmd.Flags().StringVar(&flagColor, "color", "", "theme color as #rrggbb (default from config)")
	composeCmd.Flags().StringVar(&flagBackground, "background", "", "local png/jpg used as background, resized to 640x1280")
	composeCmd.Flags().StringVar(&flagOut, "out", "", "output PNG path (default <character>.png)")
	composeCmd.Flags().BoolVar(&flagAutoColor, "auto-color", false, "derive the theme color from the coating art")

	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, _ []string) error {
	cfg, logSvc, err := loadConfig(config.Options{})
	if err != nil {
		return err
	}

	record, err := art.LoadRecord(cfg.ArtPath())
	if err != nil {
		return fmt.Errorf("%w (run `pgrwall scrape` first)", err)
	}

	character := flagCharacter
	if character == "" {
		if character, err = selectOne("Select character", providers.SortedKeys(record)); err != nil {
			return err
		}
	}

	coatings, ok := record.Coatings(character)
	if !ok {
		return fmt.Errorf("character %q is not in the art record", character)
	}

	coating := flagCoating
	if coating == "" {
		if coating, err = selectOne("Select coating", providers.SortedKeys(coatings)); err != nil {
			return err
		}
	}

	fgURL, ok := record.URL(character, coating)
	if !ok {
		return fmt.Errorf("coating %q not found for %s", coating, character)
	}

	client, err := newHTTPClient(cfg, logSvc)
	if err != nil {
		return err
	}
	dl := downloader.New(client, cfg.Retries, logSvc)

	color := flagColor
	if flagAutoColor {
		color, err = wallpaper.SuggestThemeColor(cmd.Context(), dl, fgURL)
		if err != nil {
			return fmt.Errorf("auto color: %w", err)
		}
		logSvc.Infof("Theme color from art: %s", color)
	}
	if color == "" {
		color = cfg.DefaultColor
	}

	localBG := ""
	if flagBackground != "" {
		f, err := os.Open(flagBackground)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}

		localBG = filepath.Join(cfg.ResourcesDir, webui.UploadName)
		err = wallpaper.ResizeUpload(f, localBG)
		_ = f.Close()
		defer util.RemoveQuietly(localBG)
		if err != nil {
			return err
		}
	}

	out := flagOut
	if out == "" {
		out = wallpaper.FileName(character)
	}

	err = wallpaper.NewComposer(dl, logSvc).Compose(cmd.Context(), wallpaper.Options{
		OutputPath:      out,
		Character:       character,
		ForegroundURL:   fgURL,
		LocalBackground: localBG,
		ThemeColor:      color,
	})
	if err != nil {
		return err
	}

	size := int64(0)
	if fi, err := os.Stat(out); err == nil {
		size = fi.Size()
	}
	fmt.Printf("Saved %s (%s, %s)\n", out, util.Human(size), strings.ToLower(color))

	return nil
}

func selectOne(label string, items []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("%s: nothing to choose from", strings.ToLower(label))
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  15,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}

	_, picked, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}

	return picked, nil
}
