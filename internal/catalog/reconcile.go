package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Source is the live side of the roster.
type Source interface {
	CountCharacters(ctx context.Context) (int, error)
	ScrapeCatalog(ctx context.Context) (map[string]string, error)
}

type Logger interface {
	Infof(string, ...any)
}

type Result struct {
	Catalog   Catalog
	Rebuilt   bool
	LiveCount int
}

// Reconcile returns the persisted catalog when its size equals the live
// character count and rebuilds it otherwise. A roster where one character was
// swapped for another keeps the same size and is not detected; force skips the
// comparison and always rebuilds.
func Reconcile(ctx context.Context, store *Store, src Source, force bool, log Logger) (Result, error) {
	current, err := store.Load()
	if err != nil && !errors.Is(err, ErrNoCatalog) {
		return Result{}, err
	}

	live, err := src.CountCharacters(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count live characters: %w", err)
	}

	if !force && current != nil && len(current) == live {
		log.Infof("Catalog up to date (%d characters)", live)
		return Result{Catalog: current, LiveCount: live}, nil
	}

	log.Infof("Catalog outdated (%d stored, %d live). Scraping characters from scratch", len(current), live)

	scraped, err := src.ScrapeCatalog(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("build catalog: %w", err)
	}
	log.Infof("Found %d characters", live)

	if err := store.Save(Catalog(scraped)); err != nil {
		return Result{}, err
	}

	reloaded, err := store.Load()
	if err != nil {
		return Result{}, err
	}

	return Result{Catalog: reloaded, Rebuilt: true, LiveCount: live}, nil
}
