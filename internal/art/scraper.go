package art

import (
	"context"
	"sort"
	"sync"

	"github.com/brogergvhs/pgrwall/internal/providers"
	"golang.org/x/sync/errgroup"
)

// CoatingSource fetches the coatings listed on one gallery page.
type CoatingSource interface {
	ScrapeCoatings(ctx context.Context, pageURL string) ([]providers.Coating, error)
}

type Logger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

type Failure struct {
	Character string
	Err       error
}

// Summary reports which characters made it into the record.
type Summary struct {
	Succeeded []string
	Failed    []Failure
	Coatings  int
}

func (s Summary) Partial() bool {
	return len(s.Failed) > 0
}

type Scraper struct {
	src     CoatingSource
	workers int
	log     Logger

	// OnCharacter is called after each character, successful or not, with the
	// number of distinct coatings stored for it.
	OnCharacter func(character string, coatings int, err error)
}

func NewScraper(src CoatingSource, workers int, log Logger) *Scraper {
	if workers < 1 {
		workers = 1
	}

	return &Scraper{src: src, workers: workers, log: log}
}

// Run scrapes every character of pages (name -> gallery URL). A character
// whose page cannot be fetched is left out of the record and listed in the
// summary; the others are still scraped. Only context cancellation stops the
// run early.
func (s *Scraper) Run(ctx context.Context, pages map[string]string) (Record, Summary, error) {
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		record  = make(Record, len(pages))
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, name := range names {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			s.log.Infof("Scraping %s", name)

			coatings, err := s.src.ScrapeCoatings(gctx, pages[name])

			n := 0
			mu.Lock()
			if err != nil {
				summary.Failed = append(summary.Failed, Failure{Character: name, Err: err})
			} else {
				record[name] = providers.CoatingMap(coatings)
				n = len(record[name])
				summary.Succeeded = append(summary.Succeeded, name)
				summary.Coatings += n
			}
			mu.Unlock()

			if err != nil {
				s.log.Errorf("Scraping %s failed: %v", name, err)
			}
			if s.OnCharacter != nil {
				s.OnCharacter(name, n, err)
			}

			return nil
		})
	}

	_ = g.Wait()

	sort.Strings(summary.Succeeded)
	sort.Slice(summary.Failed, func(i, j int) bool {
		return summary.Failed[i].Character < summary.Failed[j].Character
	})

	if err := ctx.Err(); err != nil {
		return record, summary, err
	}

	return record, summary, nil
}
