package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/pgrwall/internal/providers"
	"github.com/brogergvhs/pgrwall/internal/util"
)

const (
	rosterSelector = "div.desktop-hide"
	iconSelector   = "div.character_icon_div"
	gallerySuffix  = "/Gallery"
)

var (
	ErrNoRoster    = errors.New("character roster not found on list page")
	ErrBadIcon     = errors.New("character icon without link")
	ErrEmptyRoster = errors.New("no characters found")
)

type Options struct {
	ListURL string
	SiteURL string
	Retries int
	Backoff time.Duration
	Log     interface{ Debugf(string, ...any) }
}

type Scraper struct {
	client  *http.Client
	listURL string
	siteURL string
	retries int
	backoff time.Duration
	log     interface{ Debugf(string, ...any) }
}

var _ providers.Scraper = (*Scraper)(nil)

func NewScraper(c *http.Client, opts Options) *Scraper {
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}

	return &Scraper{
		client:  c,
		listURL: opts.ListURL,
		siteURL: strings.TrimRight(opts.SiteURL, "/"),
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.Log,
	}
}

func (s *Scraper) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

func (s *Scraper) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(s.client, req, s.retries, s.backoff)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}

	return doc, nil
}

func (s *Scraper) rosterIcons(ctx context.Context) (*goquery.Selection, error) {
	doc, err := s.fetchDOM(ctx, s.listURL)
	if err != nil {
		return nil, fmt.Errorf("character list: %w", err)
	}

	roster := doc.Find(rosterSelector).First()
	if roster.Length() == 0 {
		return nil, ErrNoRoster
	}

	return roster.Find(iconSelector), nil
}

// CountCharacters returns the number of character icons on the live list page.
func (s *Scraper) CountCharacters(ctx context.Context) (int, error) {
	icons, err := s.rosterIcons(ctx)
	if err != nil {
		return 0, err
	}

	return icons.Length(), nil
}

// ScrapeCatalog maps every character name on the list page to its gallery
// page. Duplicate names keep the last link.
func (s *Scraper) ScrapeCatalog(ctx context.Context) (map[string]string, error) {
	icons, err := s.rosterIcons(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, icons.Length())
	var iconErr error

	icons.EachWithBreak(func(i int, icon *goquery.Selection) bool {
		a := icon.Find("a").First()
		name, okName := a.Attr("title")
		href, okHref := a.Attr("href")
		if !okName || !okHref || strings.TrimSpace(name) == "" {
			iconErr = fmt.Errorf("icon %d: %w", i+1, ErrBadIcon)
			return false
		}

		out[name] = resolveURL(s.siteURL+"/", href) + gallerySuffix
		s.debugf("Found %s", name)

		return true
	})
	if iconErr != nil {
		return nil, iconErr
	}
	if len(out) == 0 {
		return nil, ErrEmptyRoster
	}

	return out, nil
}

// ScrapeCoatings lists the coatings shown on a character gallery page.
func (s *Scraper) ScrapeCoatings(ctx context.Context, pageURL string) ([]providers.Coating, error) {
	doc, err := s.fetchDOM(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return ExtractCoatings(doc, pageURL), nil
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}
	if err != nil {
		return href
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
