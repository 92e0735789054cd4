// Package webui serves the wallpaper form: pick a character and coating,
// optionally upload a background, choose a theme color, get a PNG back.
package webui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/pgrwall/internal/art"
	"github.com/brogergvhs/pgrwall/internal/providers"
	"github.com/brogergvhs/pgrwall/internal/util"
	"github.com/brogergvhs/pgrwall/internal/wallpaper"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

// UploadName is the fixed file name of the uploaded background.
const UploadName = "custom_bg_img.png"

type Composer interface {
	Compose(ctx context.Context, opts wallpaper.Options) error
}

type Logger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

type Options struct {
	Cache        *art.Cache
	Composer     Composer
	WorkDir      string
	ResourcesDir string
	DefaultColor string
	Debug        bool
	Log          Logger
}

type Server struct {
	cache        *art.Cache
	composer     Composer
	workDir      string
	uploadPath   string
	defaultColor string
	debug        bool
	log          Logger

	// one composition at a time: the wallpaper and upload paths are fixed
	mu sync.Mutex
}

func NewServer(opts Options) *Server {
	if opts.DefaultColor == "" {
		opts.DefaultColor = "#B7011D"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}

	return &Server{
		cache:        opts.Cache,
		composer:     opts.Composer,
		workDir:      opts.WorkDir,
		uploadPath:   filepath.Join(opts.ResourcesDir, UploadName),
		defaultColor: opts.DefaultColor,
		debug:        opts.Debug,
		log:          opts.Log,
	}
}

type result struct {
	Name    string
	DataURL template.URL
}

type page struct {
	Characters []string
	Coatings   []string
	Character  string
	Coating    string
	Color      string
	Error      string
	Result     *result
}

func (s *Server) Router() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if s.debug {
		r.Use(gin.Logger())
	}

	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.html")))

	r.GET("/", s.index)
	r.POST("/compose", s.compose)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Web UI listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// form fills the selection lists from the art record, keeping the requested
// character and coating when they exist.
func (s *Server) form(record art.Record, character, coating, color string) page {
	p := page{Color: color}
	if p.Color == "" {
		p.Color = s.defaultColor
	}

	p.Characters = providers.SortedKeys(record)
	p.Character = providers.Pick(p.Characters, character)

	if coatings, ok := record.Coatings(p.Character); ok {
		p.Coatings = providers.SortedKeys(coatings)
		p.Coating = providers.Pick(p.Coatings, coating)
	}

	return p
}

func (s *Server) index(c *gin.Context) {
	record, err := s.cache.Get()
	if err != nil {
		s.log.Errorf("Loading art record failed: %v", err)
		c.HTML(http.StatusOK, "index.html", page{Color: s.defaultColor, Error: "The art record is not available yet."})
		return
	}

	c.HTML(http.StatusOK, "index.html", s.form(record, c.Query("character"), c.Query("coating"), c.Query("color")))
}

func (s *Server) compose(c *gin.Context) {
	record, err := s.cache.Get()
	if err != nil {
		s.log.Errorf("Loading art record failed: %v", err)
		c.HTML(http.StatusInternalServerError, "index.html", page{Color: s.defaultColor, Error: "The art record is not available yet."})
		return
	}

	character := c.PostForm("character")
	coating := c.PostForm("coating")
	color := c.DefaultPostForm("color", s.defaultColor)

	p := s.form(record, character, coating, color)

	fgURL, ok := record.URL(character, coating)
	if !ok {
		p.Error = "Unknown character or coating."
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}
	if _, err := wallpaper.ParseThemeColor(color); err != nil {
		p.Error = err.Error()
		p.Color = s.defaultColor
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	localBG := ""
	if fh, err := c.FormFile("background"); err == nil {
		if !allowedUpload(fh.Filename) {
			p.Error = "The background must be a png or jpg image."
			c.HTML(http.StatusBadRequest, "index.html", p)
			return
		}

		f, err := fh.Open()
		if err != nil {
			s.fail(c, p, err)
			return
		}
		err = wallpaper.ResizeUpload(f, s.uploadPath)
		_ = f.Close()
		defer util.RemoveQuietly(s.uploadPath)
		if err != nil {
			p.Error = "The uploaded background could not be read."
			c.HTML(http.StatusBadRequest, "index.html", p)
			return
		}
		localBG = s.uploadPath
	}

	name := wallpaper.FileName(character)
	out := filepath.Join(s.workDir, name)

	err = s.composer.Compose(c.Request.Context(), wallpaper.Options{
		OutputPath:      out,
		Character:       character,
		ForegroundURL:   fgURL,
		LocalBackground: localBG,
		ThemeColor:      color,
	})
	if err != nil {
		s.fail(c, p, err)
		return
	}

	encoded, err := util.EncodeFileBase64(out)
	if rmErr := os.Remove(out); rmErr != nil {
		s.log.Errorf("Removing %s failed: %v", out, rmErr)
	}
	if err != nil {
		s.fail(c, p, err)
		return
	}

	p.Result = &result{
		Name:    name,
		DataURL: template.URL("data:image/png;base64," + encoded),
	}
	c.HTML(http.StatusOK, "index.html", p)
}

func (s *Server) fail(c *gin.Context, p page, err error) {
	s.log.Errorf("Composing wallpaper failed: %v", err)
	p.Error = "Something went wrong while generating the wallpaper: " + err.Error()
	c.HTML(http.StatusInternalServerError, "index.html", p)
}

func allowedUpload(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
