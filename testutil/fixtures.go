// Package testutil provides helpers shared by the fetchartifact tests:
// contexts, recorded API fixtures, zip archives and a go-github client
// backed by httptest.
package testutil

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// FixturePath locates name under the nearest testdata directory, looking
// in the working directory and then each parent up to the module root.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "testdata", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("stat fixture %s: %v", name, err)
		}

		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("fixture %s not found in any testdata directory", name)
	return ""
}

// LoadFixture reads a fixture file. See FixturePath for the lookup.
func LoadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(t, name))
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return data
}

// LoadJSONFixture loads a fixture and decodes it into T.
func LoadJSONFixture[T any](t *testing.T, name string) T {
	t.Helper()

	var result T
	if err := json.Unmarshal(LoadFixture(t, name), &result); err != nil {
		t.Fatalf("parse JSON fixture %s: %v", name, err)
	}
	return result
}
