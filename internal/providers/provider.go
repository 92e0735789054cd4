package providers

import "context"

// Coating is one costume artwork of a character. Name and URL are derived
// together from the same image element.
type Coating struct {
	Name string
	URL  string
}

type Scraper interface {
	CountCharacters(ctx context.Context) (int, error)
	ScrapeCatalog(ctx context.Context) (map[string]string, error)
	ScrapeCoatings(ctx context.Context, pageURL string) ([]Coating, error)
}

// CoatingMap folds coatings into a name -> URL map. A later coating with the
// same name replaces an earlier one.
func CoatingMap(coatings []Coating) map[string]string {
	out := make(map[string]string, len(coatings))
	for _, c := range coatings {
		out[c.Name] = c.URL
	}

	return out
}
