package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/fetchartifact"
	"github.com/randalmurphal/fetchartifact/config"
	clierrors "github.com/randalmurphal/fetchartifact/errors"
	"github.com/randalmurphal/fetchartifact/testutil"
)

const testSHA = "5e19cbbea129a173dc79d4634df0fdaece933b06"

// clearEnv unsets every variable the loader or CLI reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_API_URL", "GITHUB_REPOSITORY",
		"GITHUB_ACTIONS", "GITHUB_OUTPUT",
	} {
		t.Setenv(name, "")
	}
	for _, key := range config.Keys {
		t.Setenv("FETCH_ARTIFACT_"+strings.ToUpper(key), "")
	}
}

type testEnv struct {
	*environment
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	globalPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clearEnv(t)

	cfg := config.DefaultLoaderConfig()
	cfg.ErrWriter = io.Discard
	globalPath := filepath.Join(t.TempDir(), "config.yaml")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		environment: &environment{
			stdout: stdout,
			stderr: stderr,
			loader: config.NewLoaderWithPaths(cfg, globalPath, ""),
		},
		stdout:     stdout,
		stderr:     stderr,
		globalPath: globalPath,
	}
}

// newEnterpriseServer serves the recorded billyvg/sentry run and
// artifacts for the "acceptance" workflow under the Enterprise Server
// /api/v3/ prefix, plus the archive the signed URL points at.
func newEnterpriseServer(t *testing.T) *httptest.Server {
	t.Helper()

	runs := testutil.LoadJSONFixture[github.WorkflowRuns](t, "runs.json")
	artifacts := testutil.LoadJSONFixture[github.ArtifactList](t, "artifacts.json")
	archive := testutil.ZipBytes(t, map[string]string{"snapshot.png": "png"})

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("GET /api/v3/repos/billyvg/sentry/actions/workflows", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, r, &github.Workflows{
			Workflows: []*github.Workflow{{ID: github.Int64(1234), Name: github.String("acceptance")}},
		}, 0)
	})
	mux.HandleFunc("GET /api/v3/repos/billyvg/sentry/actions/workflows/1234/runs", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, r, &runs, 0)
	})
	mux.HandleFunc("GET /api/v3/repos/billyvg/sentry/actions/runs/152081708/artifacts", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, r, &artifacts, 0)
	})
	mux.HandleFunc("GET /api/v3/repos/billyvg/sentry/actions/artifacts/9808919/zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", server.URL+"/signed/visual-snapshots")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("GET /signed/visual-snapshots", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	return server
}

func downloadArgs(server *httptest.Server, dir string, extra ...string) []string {
	args := []string{
		"--token", "ghs_test",
		"--api-url", server.URL + "/",
		"--owner", "billyvg",
		"--repo", "sentry",
		"--branch", "master",
		"--workflow", "acceptance",
		"--artifact", "visual-snapshots",
		"--path", dir,
		"--retries", "0",
		"--log-level", "error",
	}
	return append(args, extra...)
}

func TestRun_Download(t *testing.T) {
	env := newTestEnv(t)
	server := newEnterpriseServer(t)
	dir := filepath.Join(t.TempDir(), "out")
	outputs := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", outputs)

	err := run(testutil.TestContext(t), env.environment, downloadArgs(server, dir, "--commit", testSHA))
	require.NoError(t, err, "stderr: %s", env.stderr)

	var result fetchartifact.SearchResult
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &result))
	assert.Equal(t, int64(9808919), result.Artifact.ID)
	assert.Equal(t, int64(152081708), result.WorkflowRun.ID)
	assert.Equal(t, testSHA, result.WorkflowRun.HeadSHA)

	got, err := os.ReadFile(filepath.Join(dir, "snapshot.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))

	written, err := os.ReadFile(outputs)
	require.NoError(t, err)
	assert.Contains(t, string(written), "artifact-id=9808919\n")
	assert.Contains(t, string(written), "head-sha="+testSHA+"\n")
	assert.Contains(t, string(written), "download-path="+dir+"\n")
}

func TestRun_ActionsReportsToBoth(t *testing.T) {
	env := newTestEnv(t)
	server := newEnterpriseServer(t)
	t.Setenv("GITHUB_ACTIONS", "true")

	err := run(testutil.TestContext(t), env.environment,
		downloadArgs(server, t.TempDir(), "--log-level", "info"))
	require.NoError(t, err, "stderr: %s", env.stderr)

	stderr := env.stderr.String()
	assert.Contains(t, stderr, "::group::Fetching artifact")
	assert.Contains(t, stderr, "::endgroup::")
	assert.Contains(t, stderr, `level=INFO msg="found artifact"`)
}

func TestRun_NoArtifacts(t *testing.T) {
	env := newTestEnv(t)
	server := newEnterpriseServer(t)

	args := downloadArgs(server, t.TempDir())
	args = append(args, "--workflow", "deploy")

	err := run(testutil.TestContext(t), env.environment, args)
	require.Error(t, err)
	assert.Equal(t, clierrors.ExitNoArtifacts, clierrors.ExitCode(err))
	assert.True(t, errors.Is(err, fetchartifact.ErrNoArtifacts))
	assert.Contains(t, err.Error(), "No artifacts found (no workflow)")
	assert.Empty(t, env.stdout.String())
}

func TestRun_MissingSetting(t *testing.T) {
	env := newTestEnv(t)

	err := run(testutil.TestContext(t), env.environment, []string{
		"--token", "ghs_test", "--owner", "billyvg", "--repo", "sentry", "--branch", "master",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, clierrors.ErrMissingSetting)
	assert.Contains(t, err.Error(), "--workflow")
	assert.Equal(t, clierrors.ExitFailure, clierrors.ExitCode(err))
}

func TestRun_RepositoryFromRunner(t *testing.T) {
	env := newTestEnv(t)
	server := newEnterpriseServer(t)
	t.Setenv("GITHUB_REPOSITORY", "billyvg/sentry")
	t.Setenv("GITHUB_TOKEN", "ghs_runner")

	err := run(testutil.TestContext(t), env.environment, []string{
		"--api-url", server.URL + "/",
		"--branch", "master",
		"--workflow", "acceptance",
		"--artifact", "visual-snapshots",
		"--path", t.TempDir(),
		"--log-level", "error",
	})
	require.NoError(t, err, "stderr: %s", env.stderr)
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--nope"}, "unknown flag"},
		{"positional", []string{"extra"}, `unexpected argument "extra"`},
		{"bad log level", []string{
			"--token", "t", "--owner", "o", "--repo", "r", "--branch", "b",
			"--workflow", "w", "--artifact", "a", "--log-level", "loud",
		}, "log_level"},
		{"bad number", []string{"--max-pages", "many"}, "max_pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			err := run(testutil.TestContext(t), env.environment, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Help(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, run(testutil.TestContext(t), env.environment, []string{"--help"}))
	assert.Contains(t, env.stdout.String(), "Usage:")
	assert.Contains(t, env.stdout.String(), "--max-pages")
}

func TestConfig_SetListUnset(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.TestContext(t)

	require.NoError(t, run(ctx, env.environment, []string{"config", "set", "branch", "develop"}))
	require.NoError(t, run(ctx, env.environment, []string{"config", "set", "token", "ghs_secret"}))

	saved, err := os.ReadFile(env.globalPath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "branch: develop")

	env.stdout.Reset()
	require.NoError(t, run(ctx, env.environment, []string{"config", "list"}))
	listing := env.stdout.String()
	assert.Contains(t, listing, "branch = develop (global)\n")
	assert.Contains(t, listing, "token = ******** (global)\n")
	assert.NotContains(t, listing, "ghs_secret")

	require.NoError(t, run(ctx, env.environment, []string{"config", "unset", "branch"}))
	env.stdout.Reset()
	require.NoError(t, run(ctx, env.environment, []string{"config", "list"}))
	assert.NotContains(t, env.stdout.String(), "branch =")
}

func TestConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no subcommand", []string{"config"}, "missing subcommand"},
		{"unknown subcommand", []string{"config", "get"}, `unknown subcommand "get"`},
		{"set arity", []string{"config", "set", "branch"}, "want <key> <value>"},
		{"unknown key", []string{"config", "set", "colour", "blue"}, "unknown config key"},
		{"local outside git", []string{"config", "set", "--local", "branch", "main"}, "config set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			err := run(testutil.TestContext(t), env.environment, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckRequired_AppCredentials(t *testing.T) {
	base := config.Settings{Owner: "o", Repo: "r", Branch: "b", Workflow: "w", Artifact: "a"}

	withApp := base
	withApp.AppID = 12345
	withApp.AppPrivateKey = "/keys/app.pem"
	assert.NoError(t, checkRequired(&withApp))

	noKey := base
	noKey.AppID = 12345
	err := checkRequired(&noKey)
	assert.ErrorIs(t, err, clierrors.ErrMissingSetting)
	assert.Contains(t, err.Error(), "--app-private-key")

	err = checkRequired(&base)
	assert.Contains(t, err.Error(), "--token")
}
