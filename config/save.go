package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoConfigPath indicates the requested layer has no file location,
// for example a local save outside a git repository.
var ErrNoConfigPath = errors.New("config file location unknown")

// Scope selects which file a save targets.
type Scope int

const (
	// ScopeGlobal is ~/.config/fetch-artifact/config.yaml.
	ScopeGlobal Scope = iota
	// ScopeLocal is .fetch-artifact.yaml in the git root.
	ScopeLocal
)

func (s Scope) String() string {
	if s == ScopeLocal {
		return "local"
	}
	return "global"
}

// Set writes key to the file for scope, keeping other entries.
func (l *Loader) Set(scope Scope, key, value string) error {
	if err := l.checkKey(key); err != nil {
		return err
	}

	path, err := l.pathFor(scope)
	if err != nil {
		return err
	}

	existing, err := readYAML(path)
	if err != nil {
		return err
	}
	existing[key] = parseValue(key, value)

	return writeYAML(path, existing, scope)
}

// Unset removes key from the file for scope. A missing file or key is
// not an error.
func (l *Loader) Unset(scope Scope, key string) error {
	path, err := l.pathFor(scope)
	if err != nil {
		return err
	}

	existing, err := readYAML(path)
	if err != nil {
		return err
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)

	return writeYAML(path, existing, scope)
}

func (l *Loader) checkKey(key string) error {
	if l.config.Keys != nil && !slices.Contains(l.config.Keys, key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(l.config.Keys, ", "))
	}
	return nil
}

func (l *Loader) pathFor(scope Scope) (string, error) {
	path := l.globalPath
	if scope == ScopeLocal {
		path = l.localPath
	}
	if path == "" {
		return "", fmt.Errorf("%s config: %w", scope, ErrNoConfigPath)
	}
	return path, nil
}

func readYAML(path string) (map[string]any, error) {
	existing := make(map[string]any)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	return existing, nil
}

func writeYAML(path string, values map[string]any, scope Scope) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}

	// global config may hold a token
	perm := os.FileMode(0o600)
	if scope == ScopeLocal {
		if err := checkNoToken(values); err != nil {
			return err
		}
		perm = 0o644
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// checkNoToken keeps secrets out of the repository-level file.
func checkNoToken(values map[string]any) error {
	if _, ok := values[KeyToken]; ok {
		return fmt.Errorf("refusing to store %s in local config; use the global config or GITHUB_TOKEN", KeyToken)
	}
	return nil
}

// parseValue stores numeric keys as YAML integers. Everything else stays
// a string so values like commit SHAs keep leading zeros.
func parseValue(key, value string) any {
	switch key {
	case KeyPerPage, KeyMaxPages, KeyMaxWorkflowPages, KeyRetries, KeyAppID, KeyAppInstallationID:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}
