package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/brogergvhs/pgrwall/internal/art"
	"github.com/brogergvhs/pgrwall/internal/catalog"
	"github.com/brogergvhs/pgrwall/internal/config"
	"github.com/brogergvhs/pgrwall/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wikiRoster = []string{"Bianca", "Kamui", "Lee", "Liv", "Lucia"}

// fakeWiki serves a list page with the roster and one gallery per character.
// Galleries listed in missing answer 404.
type fakeWiki struct {
	mu        sync.Mutex
	missing   map[string]bool
	galleries []string
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/wiki/Main_Page" {
		var b strings.Builder
		b.WriteString(`<html><body><div class="desktop-hide">`)
		for _, n := range wikiRoster {
			fmt.Fprintf(&b, `<div class="character_icon_div"><a title="%s" href="/wiki/%s"></a></div>`, n, n)
		}
		b.WriteString(`</div></body></html>`)
		_, _ = w.Write([]byte(b.String()))
		return
	}

	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/wiki/"), "/Gallery")
	if !ok {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	f.galleries = append(f.galleries, name)
	missing := f.missing[name]
	f.mu.Unlock()

	if missing {
		http.NotFound(w, r)
		return
	}

	fmt.Fprintf(w, `<html><body><div class="tabbertab"><img srcset="/images/thumb/%[1]s-Default.png/300px-%[1]s-Default.png 1.5x, /images/thumb/%[1]s-Default.png/400px-%[1]s-Default.png 2x"></div></body></html>`, name)
}

func newScrapeJob(t *testing.T, wiki *fakeWiki) (*scrapeJob, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(wiki)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.ListURL = srv.URL + "/wiki/Main_Page"
	cfg.SiteURL = srv.URL
	cfg.RequestsPerSecond = 0
	cfg.Workers = 2

	logSvc := ui.NewLoggerTo(io.Discard, false)
	client, err := newHTTPClient(cfg, logSvc)
	require.NoError(t, err)

	return &scrapeJob{
		cfg: cfg,
		src: newWikiScraper(client, cfg, logSvc),
		log: logSvc,
	}, srv
}

func seedCatalog(t *testing.T, job *scrapeJob, base string, names ...string) {
	t.Helper()
	c := catalog.Catalog{}
	for _, n := range names {
		c[n] = base + "/wiki/" + n + "/Gallery"
	}
	require.NoError(t, catalog.NewStore(job.cfg.CatalogPath()).Save(c))
}

func TestScrapeJob_FreshCatalogIsScraped(t *testing.T) {
	wiki := &fakeWiki{}
	job, srv := newScrapeJob(t, wiki)
	seedCatalog(t, job, srv.URL, wikiRoster...)

	var rebuilt bool
	job.OnCatalog = func(res catalog.Result) { rebuilt = res.Rebuilt }

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.Len(t, summary.Succeeded, 5)

	record, err := art.LoadRecord(job.cfg.ArtPath())
	require.NoError(t, err)
	require.Len(t, record, 5)
	u, ok := record.URL("Liv", "Liv Default")
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/images/Liv-Default.png", u)
}

func TestScrapeJob_OutdatedCatalogIsRebuiltThenScraped(t *testing.T) {
	wiki := &fakeWiki{}
	job, srv := newScrapeJob(t, wiki)
	seedCatalog(t, job, srv.URL, wikiRoster[:4]...)

	var res catalog.Result
	job.OnCatalog = func(r catalog.Result) { res = r }

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Rebuilt)

	persisted, err := catalog.NewStore(job.cfg.CatalogPath()).Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 5)

	record, err := art.LoadRecord(job.cfg.ArtPath())
	require.NoError(t, err)
	assert.Len(t, record, 5)
	assert.ElementsMatch(t, wikiRoster, wiki.galleries)
}

func TestScrapeJob_PartialRecordIsWritten(t *testing.T) {
	wiki := &fakeWiki{missing: map[string]bool{"Kamui": true}}
	job, _ := newScrapeJob(t, wiki)

	var mu sync.Mutex
	failed := 0
	job.OnCharacter = func(_ string, _ int, err error) {
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}

	summary, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Partial())
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Kamui", summary.Failed[0].Character)
	assert.Equal(t, 1, failed)

	record, err := art.LoadRecord(job.cfg.ArtPath())
	require.NoError(t, err)
	assert.Len(t, record, 4)
	assert.NotContains(t, record, "Kamui")
}

func TestScrapeJob_NothingScrapedKeepsPreviousRecord(t *testing.T) {
	missing := map[string]bool{}
	for _, n := range wikiRoster {
		missing[n] = true
	}
	job, _ := newScrapeJob(t, &fakeWiki{missing: missing})

	previous := art.Record{"Lucia": {"Default": "https://x/Lucia.png"}}
	require.NoError(t, art.SaveRecord(job.cfg.ArtPath(), previous))
	before, err := os.ReadFile(job.cfg.ArtPath())
	require.NoError(t, err)

	summary, err := job.Run(context.Background())
	assert.ErrorIs(t, err, errNothingScraped)
	assert.Len(t, summary.Failed, 5)

	after, err := os.ReadFile(job.cfg.ArtPath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
