package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoaderConfig configures the layered loader.
type LoaderConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// With "FETCH_ARTIFACT_", key "api_url" maps to FETCH_ARTIFACT_API_URL.
	EnvPrefix string

	// GlobalConfigDir is the directory under ~/.config/ holding the
	// global config file.
	GlobalConfigDir string

	// GlobalConfigFile is the global config filename.
	// Defaults to "config.yaml" if empty.
	GlobalConfigFile string

	// LocalConfigName is the filename looked up in the git root.
	LocalConfigName string

	// Keys lists every recognised key. File entries outside this list
	// produce a warning and are ignored. Nil accepts any key.
	Keys []string

	// Defaults provides the lowest-priority value for each key.
	Defaults map[string]string

	// Fallbacks maps a key to environment variables consulted when the
	// prefixed variable and both files leave it unset, such as
	// GITHUB_TOKEN for "token".
	Fallbacks map[string][]string

	// GitRootFinder locates the git root. If nil, the nearest parent
	// directory containing .git is used.
	GitRootFinder func(startDir string) (string, error)

	// ErrWriter receives warnings. Defaults to os.Stderr.
	ErrWriter io.Writer
}

func (c LoaderConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Loader merges configuration layers.
type Loader struct {
	config     LoaderConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues found while loading.
	Warnings []string
}

// NewLoader creates a loader, locating the local config in the git root
// and the global config under the user's home directory.
func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{config: cfg}
	if l.config.ErrWriter == nil {
		l.config.ErrWriter = os.Stderr
	}

	finder := cfg.GitRootFinder
	if finder == nil {
		finder = findGitRoot
	}
	if root, err := finder("."); err == nil && root != "" {
		l.gitRoot = root
		if cfg.LocalConfigName != "" {
			l.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			l.globalPath = filepath.Join(home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}

	return l
}

// NewLoaderWithPaths creates a loader with explicit file paths. An empty
// path skips that layer.
func NewLoaderWithPaths(cfg LoaderConfig, globalPath, localPath string) *Loader {
	l := &Loader{
		config:     cfg,
		globalPath: globalPath,
		localPath:  localPath,
	}
	if l.config.ErrWriter == nil {
		l.config.ErrWriter = os.Stderr
	}
	return l
}

func (l *Loader) warn(msg string) {
	l.Warnings = append(l.Warnings, msg)
	fmt.Fprintf(l.config.ErrWriter, "Warning: %s\n", msg)
}

// Values holds the merged configuration.
type Values struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (v *Values) Get(key string) string {
	return v.values[key]
}

// Source returns where a key's value came from.
func (v *Values) Source(key string) Source {
	return v.sources[key]
}

// GetWithSource returns both the value and its source.
func (v *Values) GetWithSource(key string) (string, Source) {
	return v.values[key], v.sources[key]
}

// Int parses a key as an integer. Unset keys return zero.
func (v *Values) Int(key string) (int, error) {
	raw := v.values[key]
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number (from %s)", key, raw, v.sources[key])
	}
	return n, nil
}

// Keys returns the set keys in sorted order.
func (v *Values) Keys() []string {
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load merges all layers. Priority, highest first:
// flags > env > local > global > fallback env > defaults.
// Empty flag values are ignored.
func (l *Loader) Load(flags map[string]string) *Values {
	v := &Values{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	l.applyDefaults(v)
	l.applyFallbacks(v)
	l.applyFile(v, l.globalPath, SourceGlobal)
	l.applyFile(v, l.localPath, SourceLocal)
	l.applyEnv(v)

	for key, value := range flags {
		if value != "" {
			v.set(key, value, SourceFlag)
		}
	}

	return v
}

func (v *Values) set(key, value string, src Source) {
	v.values[key] = value
	v.sources[key] = src
}

func (l *Loader) applyDefaults(v *Values) {
	for key, value := range l.config.Defaults {
		v.set(key, value, SourceDefault)
	}
}

func (l *Loader) applyFallbacks(v *Values) {
	for key, envs := range l.config.Fallbacks {
		for _, env := range envs {
			if value := os.Getenv(env); value != "" {
				v.set(key, value, SourceFallback)
				break
			}
		}
	}
}

func (l *Loader) applyFile(v *Values, path string, src Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is fine
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		l.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if l.config.Keys != nil && !slices.Contains(l.config.Keys, key) {
			l.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		if s := toString(value); s != "" {
			v.set(key, s, src)
		}
	}
}

func (l *Loader) applyEnv(v *Values) {
	if l.config.EnvPrefix == "" {
		return
	}

	keys := make(map[string]bool)
	for _, k := range l.config.Keys {
		keys[k] = true
	}
	for k := range l.config.Defaults {
		keys[k] = true
	}

	for key := range keys {
		envKey := l.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			v.set(key, value, SourceEnv)
		}
	}
}

// GitRoot returns the detected git root directory.
func (l *Loader) GitRoot() string {
	return l.gitRoot
}

// GlobalPath returns the path to the global config file.
func (l *Loader) GlobalPath() string {
	return l.globalPath
}

// LocalPath returns the path to the local config file.
func (l *Loader) LocalPath() string {
	return l.localPath
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot walks up from startDir to the first directory containing .git.
func findGitRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
