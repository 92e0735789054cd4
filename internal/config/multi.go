package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brogergvhs/pgrwall/internal/util"
)

// DefaultLabel is the profile created by `pgrwall config init`. It cannot be
// removed and is the fallback when the active profile goes away.
const DefaultLabel = "Default"

const profileExt = ".yaml"

var (
	ErrNoConfig = errors.New("no config selected")
	ErrBadLabel = errors.New("invalid config label")
)

// ConfigRoot is $PGRWALL_CONFIG_HOME when set, otherwise the per-user config
// folder (APPDATA on Windows, XDG_CONFIG_HOME or ~/.config elsewhere).
func ConfigRoot() string {
	if dir := os.Getenv("PGRWALL_CONFIG_HOME"); dir != "" {
		return dir
	}
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "pgrwall")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pgrwall")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pgrwall")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

// ValidateLabel rejects labels that would not map to a single file inside
// ConfigsDir.
func ValidateLabel(label string) error {
	switch {
	case strings.TrimSpace(label) == "":
		return fmt.Errorf("%w: label cannot be empty", ErrBadLabel)
	case label != strings.TrimSpace(label):
		return fmt.Errorf("%w %q: leading or trailing spaces", ErrBadLabel, label)
	case label == "." || label == "..", strings.ContainsAny(label, `/\`):
		return fmt.Errorf("%w %q", ErrBadLabel, label)
	}
	return nil
}

func labelPath(label string) string {
	return filepath.Join(ConfigsDir(), label+profileExt)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func setCurrent(label string) error {
	return util.WriteFileAtomic(CurrentLabelFile(), func(w io.Writer) error {
		_, err := io.WriteString(w, label)
		return err
	})
}

func CurrentLabel() (string, error) {
	b, err := os.ReadFile(CurrentLabelFile())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}

	return label, nil
}

// ConfigPathByLabel returns the path of an existing profile.
func ConfigPathByLabel(label string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}

	path := labelPath(label)
	if !exists(path) {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, nil
}

// ActiveConfigPath is the profile named by the current_config file. The file
// itself may have been deleted by hand; callers load it and report that.
func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil {
		return "", ErrNoConfig
	}
	if err := ValidateLabel(label); err != nil {
		return "", err
	}

	return labelPath(label), nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func ListConfigs() ([]ConfigInfo, error) {
	entries, err := os.ReadDir(ConfigsDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	activeLabel, _ := CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != profileExt {
			continue
		}

		label := strings.TrimSuffix(name, profileExt)
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   labelPath(label),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func SwitchConfig(label string) error {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return err
	}
	if err := ensureDirs(); err != nil {
		return err
	}

	if _, err := loadYAML(path); err != nil {
		return fmt.Errorf("config %q is not valid YAML: %w", label, err)
	}

	return setCurrent(label)
}

// AddConfig copies srcPath into a new profile after checking that it parses.
func AddConfig(label, srcPath string) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}

	dst := labelPath(label)
	if exists(dst) {
		return fmt.Errorf("config %q already exists", label)
	}

	cfg, err := loadYAML(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}
	if err := ensureDirs(); err != nil {
		return err
	}

	return SaveYAML(cfg, dst)
}

// CreateEmptyConfig writes a profile with default values and returns its path.
func CreateEmptyConfig(label string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}

	path := labelPath(label)
	if exists(path) {
		return "", fmt.Errorf("config %q already exists", label)
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

// RenameConfig renames a profile and keeps it active if it was.
func RenameConfig(oldLabel, newLabel string) error {
	oldPath, err := ConfigPathByLabel(oldLabel)
	if err != nil {
		return err
	}
	if err := ValidateLabel(newLabel); err != nil {
		return err
	}
	if oldLabel == DefaultLabel {
		return fmt.Errorf("cannot rename the %s config", DefaultLabel)
	}

	newPath := labelPath(newLabel)
	if exists(newPath) {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return setCurrent(newLabel)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active one switches back to
// DefaultLabel; switched reports whether that happened.
func RemoveConfig(label string) (switched bool, err error) {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return false, err
	}
	if label == DefaultLabel {
		return false, fmt.Errorf("cannot remove the %s config", DefaultLabel)
	}

	if active, _ := CurrentLabel(); active == label {
		if err := SwitchConfig(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// InitDefaultConfig creates the Default profile and makes it active. An
// existing Default profile is kept, activated, and reported with os.ErrExist.
func InitDefaultConfig() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := labelPath(DefaultLabel)
	if exists(path) {
		if err := setCurrent(DefaultLabel); err != nil {
			return path, err
		}
		return path, os.ErrExist
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, setCurrent(DefaultLabel)
}
