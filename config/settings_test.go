package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func clearRunnerEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_API_URL", "GITHUB_REPOSITORY"} {
		t.Setenv(name, "")
	}
	for _, key := range Keys {
		t.Setenv("FETCH_ARTIFACT_"+strings.ToUpper(key), "")
	}
}

func testLoader(t *testing.T, global string) *Loader {
	t.Helper()

	var globalPath string
	if global != "" {
		globalPath = filepath.Join(t.TempDir(), "config.yaml")
		writeFile(t, globalPath, global)
	}
	cfg := DefaultLoaderConfig()
	cfg.ErrWriter = &bytes.Buffer{}
	return NewLoaderWithPaths(cfg, globalPath, "")
}

func TestLoad_Defaults(t *testing.T) {
	clearRunnerEnv(t)

	s, _, err := Load(testLoader(t, ""), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.PerPage != 10 || s.MaxPages != 50 || s.MaxWorkflowPages != 100 || s.Retries != 10 {
		t.Errorf("numeric defaults = %d/%d/%d/%d", s.PerPage, s.MaxPages, s.MaxWorkflowPages, s.Retries)
	}
	if s.Path != "." || s.LogLevel != "info" || s.LogFormat != "text" {
		t.Errorf("string defaults = %q/%q/%q", s.Path, s.LogLevel, s.LogFormat)
	}
	if s.Token != "" || s.Owner != "" {
		t.Errorf("unexpected values: %+v", s)
	}
}

func TestLoad_RunnerFallbacks(t *testing.T) {
	clearRunnerEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghs_runner")
	t.Setenv("GITHUB_REPOSITORY", "billyvg/sentry")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")

	s, v, err := Load(testLoader(t, ""), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Token != "ghs_runner" || s.Owner != "billyvg" || s.Repo != "sentry" {
		t.Errorf("settings = %+v", s)
	}
	if s.APIURL != "https://ghe.example.com/api/v3" {
		t.Errorf("APIURL = %q", s.APIURL)
	}
	if v.Source(KeyOwner) != SourceFallback || v.Source(KeyToken) != SourceFallback {
		t.Errorf("sources = %s, %s", v.Source(KeyOwner), v.Source(KeyToken))
	}
}

func TestLoad_RepositoryDoesNotOverride(t *testing.T) {
	clearRunnerEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "fork/sentry")

	s, _, err := Load(testLoader(t, "owner: getsentry\n"), map[string]string{KeyRepo: "sentry"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Owner != "getsentry" || s.Repo != "sentry" {
		t.Errorf("owner/repo = %s/%s, want getsentry/sentry", s.Owner, s.Repo)
	}
}

func TestLoad_Flags(t *testing.T) {
	clearRunnerEnv(t)
	t.Setenv("FETCH_ARTIFACT_BRANCH", "develop")

	s, v, err := Load(testLoader(t, "branch: master\nmax_pages: 5\n"), map[string]string{
		KeyWorkflow: "acceptance",
		KeyPerPage:  "30",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Branch != "develop" || v.Source(KeyBranch) != SourceEnv {
		t.Errorf("branch = %q (%s)", s.Branch, v.Source(KeyBranch))
	}
	if s.Workflow != "acceptance" || s.PerPage != 30 || s.MaxPages != 5 {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoad_AppCredentials(t *testing.T) {
	clearRunnerEnv(t)

	s, _, err := Load(testLoader(t, "app_id: 12345\napp_private_key: /keys/app.pem\n"), map[string]string{
		KeyAppInstallationID: "777",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.AppID != 12345 || s.AppInstallationID != 777 || s.AppPrivateKey != "/keys/app.pem" {
		t.Errorf("app settings = %d/%d/%q", s.AppID, s.AppInstallationID, s.AppPrivateKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		flags   map[string]string
		wantErr string
	}{
		{"bad number", map[string]string{KeyMaxPages: "lots"}, "max_pages"},
		{"bad format", map[string]string{KeyLogFormat: "xml"}, "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRunnerEnv(t)
			_, _, err := Load(testLoader(t, ""), tt.flags)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyRepository_Malformed(t *testing.T) {
	for _, repo := range []string{"", "noslash", "/sentry", "billyvg/"} {
		s := &Settings{}
		v := &Values{values: map[string]string{}, sources: map[string]Source{}}
		applyRepository(s, v, repo)
		if s.Owner != "" || s.Repo != "" {
			t.Errorf("applyRepository(%q) set %s/%s", repo, s.Owner, s.Repo)
		}
	}
}
