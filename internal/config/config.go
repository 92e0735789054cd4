package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/pgrwall/internal/util"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListURL    = "https://grayravens.com/wiki/Main_Page"
	DefaultSiteURL    = "https://grayravens.com"
	DefaultThemeColor = "#B7011D"
)

type Config struct {
	DataDir      string `yaml:"data_dir"`
	CatalogFile  string `yaml:"catalog_file"`
	ArtFile      string `yaml:"art_file"`
	ResourcesDir string `yaml:"resources_dir"`

	ListURL string `yaml:"list_url"`
	SiteURL string `yaml:"site_url"`

	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Retries           int     `yaml:"retries"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	Listen       string `yaml:"listen"`
	DefaultColor string `yaml:"default_color"`

	Debug bool `yaml:"debug"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	DataDir      string
	Workers      int
	Listen       string
	Cookie       string
	CookieFile   string
	UserAgent    string
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:           ".",
		CatalogFile:       "character_pages.gob",
		ArtFile:           "char_info.json",
		ResourcesDir:      filepath.Join("static", "resources"),
		ListURL:           DefaultListURL,
		SiteURL:           DefaultSiteURL,
		Workers:           1,
		RequestsPerSecond: 2,
		Retries:           3,
		TimeoutSeconds:    30,
		Cookie:            "",
		CookieFile:        "",
		UserAgent:         "",
		CloudflareBypass:  false,
		Listen:            "127.0.0.1:8501",
		DefaultColor:      DefaultThemeColor,
		Debug:             false,
	}
}

// CatalogPath resolves CatalogFile against DataDir unless it is absolute.
func (c *Config) CatalogPath() string {
	return c.resolve(c.CatalogFile)
}

func (c *Config) ArtPath() string {
	return c.resolve(c.ArtFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return util.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		applyEnv(cfg)
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `pgrwall config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	applyEnv(cfg)
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

// applyEnv lets PGRWALL_* variables override the profile.
func applyEnv(c *Config) {
	if v := os.Getenv("PGRWALL_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("PGRWALL_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("PGRWALL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.CatalogFile == "" {
		c.CatalogFile = def.CatalogFile
	}
	if c.ArtFile == "" {
		c.ArtFile = def.ArtFile
	}
	if c.ResourcesDir == "" {
		c.ResourcesDir = def.ResourcesDir
	}
	if c.ListURL == "" {
		c.ListURL = def.ListURL
	}
	if c.SiteURL == "" {
		c.SiteURL = def.SiteURL
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Retries <= 0 {
		c.Retries = 1
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DefaultColor == "" {
		c.DefaultColor = def.DefaultColor
	}
}

func (c *Config) Print() {
	fmt.Printf(" -data_dir: %s\n", c.DataDir)
	fmt.Printf(" -catalog_file: %s\n", c.CatalogFile)
	fmt.Printf(" -art_file: %s\n", c.ArtFile)
	fmt.Printf(" -resources_dir: %s\n", c.ResourcesDir)
	fmt.Printf(" -list_url: %s\n", c.ListURL)
	fmt.Printf(" -site_url: %s\n", c.SiteURL)
	fmt.Printf(" -workers: %d\n", c.Workers)
	if c.RequestsPerSecond > 0 {
		fmt.Printf(" -requests_per_second: %.2f\n", c.RequestsPerSecond)
	}
	fmt.Printf(" -retries: %d\n", c.Retries)
	fmt.Printf(" -timeout_seconds: %d\n", c.TimeoutSeconds)
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		fmt.Printf(" -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	fmt.Printf(" -listen: %s\n", c.Listen)
	fmt.Printf(" -default_color: %s\n", c.DefaultColor)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
}
