package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("PGRWALL_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("PGRWALL_LISTEN", "")
	t.Setenv("PGRWALL_USER_AGENT", "")
	t.Setenv("PGRWALL_DATA_DIR", "")
	t.Chdir(t.TempDir())
	return root
}

func TestLoadMerged_NoProfile(t *testing.T) {
	isolate(t)

	cfg, used, err := LoadMerged(Options{Workers: 4})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "127.0.0.1:8501", cfg.Listen)
	assert.Equal(t, DefaultThemeColor, cfg.DefaultColor)
	assert.Equal(t, filepath.Join(".", "char_info.json"), cfg.ArtPath())
}

func TestLoadMerged_ProfileThenEnvThenFlags(t *testing.T) {
	root := isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pgrwall", "configs", "Default.yaml"), path)

	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nlisten: 0.0.0.0:9000\nsite_url: https://example.org/\ncatalog_file: /abs/pages.gob\n"), 0644))
	t.Setenv("PGRWALL_DATA_DIR", "/srv/pgr")

	cfg, used, err := LoadMerged(Options{Listen: "127.0.0.1:1"})
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "127.0.0.1:1", cfg.Listen, "flags win over the profile")
	assert.Equal(t, "https://example.org", cfg.SiteURL)
	assert.Equal(t, "/abs/pages.gob", cfg.CatalogPath())
	assert.Equal(t, filepath.Join("/srv/pgr", "char_info.json"), cfg.ArtPath())
	assert.Equal(t, 3, cfg.Retries, "unset fields keep their defaults")
}

func TestLoadMerged_IgnoreConfig(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0644))

	cfg, _, err := LoadMerged(Options{IgnoreConfig: true, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.Debug)
}

func TestProfiles(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	_, err = CreateEmptyConfig("alt")
	require.NoError(t, err)
	_, err = CreateEmptyConfig("alt")
	assert.Error(t, err)

	require.NoError(t, SwitchConfig("alt"))
	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "alt", label)

	require.NoError(t, RenameConfig("alt", "server"))
	label, _ = CurrentLabel()
	assert.Equal(t, "server", label, "renaming the active profile keeps it active")

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[1].Active)

	switched, err := RemoveConfig("server")
	require.NoError(t, err)
	assert.True(t, switched)
	label, _ = CurrentLabel()
	assert.Equal(t, DefaultLabel, label)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
	_, err = ConfigPathByLabel("server")
	assert.Error(t, err)
}

func TestValidateLabel(t *testing.T) {
	isolate(t)

	assert.NoError(t, ValidateLabel("server"))
	for _, bad := range []string{"", "  ", " x", "..", ".", "a/b", `a\b`} {
		assert.ErrorIs(t, ValidateLabel(bad), ErrBadLabel, bad)
	}

	_, err := CreateEmptyConfig("../escape")
	assert.ErrorIs(t, err, ErrBadLabel)
}

func TestConfigRoot_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PGRWALL_CONFIG_HOME", dir)
	assert.Equal(t, dir, ConfigRoot())
	assert.Equal(t, filepath.Join(dir, "configs"), ConfigsDir())
}

func TestAddConfig_RejectsInvalidYAML(t *testing.T) {
	isolate(t)

	src := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(src, []byte("workers: [oops"), 0644))
	assert.Error(t, AddConfig("broken", src))

	good := filepath.Join(t.TempDir(), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("workers: 4\n"), 0644))
	require.NoError(t, AddConfig("good", good))

	path, err := ConfigPathByLabel("good")
	require.NoError(t, err)
	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
}
