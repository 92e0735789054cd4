package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"mime"
	"net/http"
	"strings"
	"time"

	// decoders for image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/brogergvhs/pgrwall/internal/util"
)

// MaxImageBytes bounds a single artwork download.
const MaxImageBytes = 64 << 20

var ErrTooLarge = errors.New("image exceeds size limit")

type Downloader struct {
	client  *http.Client
	retries int
	timeout time.Duration
	log     interface{ Debugf(string, ...any) }
}

func New(c *http.Client, retries int, log interface{ Debugf(string, ...any) }) *Downloader {
	if retries < 1 {
		retries = 1
	}

	return &Downloader{
		client:  c,
		retries: retries,
		timeout: 60 * time.Second,
		log:     log,
	}
}

// Fetch downloads url into memory. Responses that declare a non-image
// Content-Type are rejected.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := util.DoWithRetry(d.client, req, d.retries, time.Second)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return nil, fmt.Errorf("download %s: unexpected MIME: %s", url, ct)
		}
	}

	if resp.ContentLength > MaxImageBytes {
		return nil, fmt.Errorf("download %s: %w", url, ErrTooLarge)
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	written, err := copyWithProgress(&buf, resp.Body, func(done int64) bool {
		return done <= MaxImageBytes
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	if d.log != nil {
		d.log.Debugf("Downloaded %s (%s)", url, util.Human(written))
	}

	return buf.Bytes(), nil
}

// FetchImage downloads and decodes a PNG, JPEG or WebP image.
func (d *Downloader) FetchImage(ctx context.Context, url string) (image.Image, error) {
	b, err := d.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	return img, nil
}
