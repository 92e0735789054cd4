package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/pgrwall/internal/providers"
)

const (
	tabSelector = "div.tabbertab"

	// srcset is "<1x> 1.5x, <2x> 2x"; the third space-separated token is the
	// largest rendition.
	srcsetCandidate = 2

	pngExt       = ".png"
	thumbSegment = "/thumb"
	coatingLabel = "Coating "
)

// ExtractCoatings reads one coating per gallery tab. The first image of each
// tab supplies the artwork; tabs without a PNG candidate or showing a
// screenshot are skipped.
func ExtractCoatings(doc *goquery.Document, pageURL string) []providers.Coating {
	var out []providers.Coating

	doc.Find(tabSelector).Each(func(_ int, tab *goquery.Selection) {
		img := tab.Find("img").First()
		if img.Length() == 0 {
			return
		}

		srcset, _ := img.Attr("srcset")
		candidate, ok := PickSrcsetCandidate(srcset)
		if !ok {
			return
		}

		u := NormalizeArtURL(resolveURL(pageURL, candidate))
		if IsScreenshot(u) {
			return
		}

		out = append(out, providers.Coating{Name: CoatingName(u), URL: u})
	})

	return out
}

// PickSrcsetCandidate returns the high resolution entry of a srcset when it
// points at a PNG.
func PickSrcsetCandidate(srcset string) (string, bool) {
	parts := strings.Split(srcset, " ")
	if len(parts) <= srcsetCandidate {
		return "", false
	}

	c := strings.TrimSpace(parts[srcsetCandidate])
	if !strings.Contains(c, pngExt) {
		return "", false
	}

	return c, true
}

// NormalizeArtURL turns a thumbnail URL into the full resolution file URL:
// everything after the first ".png" is dropped and the /thumb segment removed.
func NormalizeArtURL(u string) string {
	if i := strings.Index(u, pngExt); i >= 0 {
		u = u[:i] + pngExt
	}

	return strings.ReplaceAll(u, thumbSegment, "")
}

func IsScreenshot(u string) bool {
	return strings.Contains(strings.ToLower(u), "screenshot")
}

// CoatingName derives the display name from the file name of a normalized
// art URL, e.g. ".../Coating-Crimson-Weave.png" -> "Crimson Weave".
func CoatingName(u string) string {
	name := u
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	name = strings.ReplaceAll(name, pngExt, "")
	name = strings.ReplaceAll(name, "-", " ")

	return strings.ReplaceAll(name, coatingLabel, "")
}
