package wiki

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickSrcsetCandidate(t *testing.T) {
	tests := []struct {
		name   string
		srcset string
		want   string
		wantOK bool
	}{
		{"two candidates", "/a/300px-X.png 1.5x, /a/400px-X.png 2x", "/a/400px-X.png", true},
		{"jpg candidate", "/a/300px-X.jpg 1.5x, /a/400px-X.jpg 2x", "", false},
		{"single candidate", "/a/300px-X.png 1.5x", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickSrcsetCandidate(tt.srcset)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeArtURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://grayravens.com/images/thumb/a/b/Coating-Name.png/200px-Coating-Name.png",
			"https://grayravens.com/images/a/b/Coating-Name.png",
		},
		{
			"https://grayravens.com/images/thumb/a/b/X.png?query=1",
			"https://grayravens.com/images/a/b/X.png",
		},
		{
			"https://grayravens.com/images/a/b/X.png",
			"https://grayravens.com/images/a/b/X.png",
		},
	}

	for _, tt := range tests {
		got := NormalizeArtURL(tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, "/thumb")
		assert.NotContains(t, got, "?")
		assert.True(t, strings.HasSuffix(got, ".png"))
		assert.Equal(t, got, NormalizeArtURL(got), "normalizing twice changes nothing")
	}
}

func TestIsScreenshot(t *testing.T) {
	assert.True(t, IsScreenshot("https://x/images/Lucia-Screenshot.png"))
	assert.True(t, IsScreenshot("https://x/images/lucia-screenshot-2.png"))
	assert.False(t, IsScreenshot("https://x/images/Coating-Shot.png"))
}

func TestCoatingName(t *testing.T) {
	tests := map[string]string{
		"https://x/images/a/ab/Coating-Crimson-Weave.png": "Crimson Weave",
		"https://x/images/a/ab/Lucia-Default.png":         "Lucia Default",
		"https://x/images/a/ab/Liv-Coating-Silver.png":    "Liv Silver",
	}

	for in, want := range tests {
		got := CoatingName(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, CoatingName(in), "derivation is deterministic")
	}
}

func TestExtractCoatings_Counts(t *testing.T) {
	// N qualifying tabs, M of them jpg or screenshots.
	const n, m = 6, 2

	var b strings.Builder
	for i := 0; i < n-m; i++ {
		fmt.Fprintf(&b, `<div class="tabbertab"><img srcset="/images/thumb/%d/C-%d.png/1px.png 1.5x, /images/thumb/%d/C-%d.png/2px.png 2x"></div>`, i, i, i, i)
	}
	b.WriteString(`<div class="tabbertab"><img srcset="/images/thumb/j/J.jpg/1px.jpg 1.5x, /images/thumb/j/J.jpg/2px.jpg 2x"></div>`)
	b.WriteString(`<div class="tabbertab"><img srcset="/images/thumb/s/Screenshot.png/1px.png 1.5x, /images/thumb/s/Screenshot.png/2px.png 2x"></div>`)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)

	coatings := ExtractCoatings(doc, "https://grayravens.com/wiki/X/Gallery")
	assert.Len(t, coatings, n-m)

	for _, c := range coatings {
		assert.Equal(t, CoatingName(c.URL), c.Name, "name and URL stay paired")
	}
}
