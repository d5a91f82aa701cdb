// fetch-artifact downloads the newest artifact produced by a successful
// GitHub Actions workflow run on a branch, optionally pinned to a commit,
// and extracts it into a local directory.
//
// Settings come from flags, FETCH_ARTIFACT_* variables, the local
// .fetch-artifact.yaml in the git root and the global config file, in
// that order. Inside Actions, GITHUB_TOKEN, GITHUB_API_URL and
// GITHUB_REPOSITORY fill in whatever is left unset. Without a token,
// GitHub App credentials are exchanged for an installation token.
//
// On success the selected artifact and run are printed as JSON on
// stdout. The exit status is 0 on success, 2 when nothing matched and 1
// for any other failure.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/fetchartifact"
	"github.com/randalmurphal/fetchartifact/auth"
	"github.com/randalmurphal/fetchartifact/config"
	clierrors "github.com/randalmurphal/fetchartifact/errors"
	"github.com/randalmurphal/fetchartifact/progress"
)

const defaultAPIURL = "https://api.github.com"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := config.DefaultLoaderConfig()
	cfg.ErrWriter = os.Stderr
	env := &environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		loader: config.NewLoader(cfg),
	}

	err := run(ctx, env, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(clierrors.ExitCode(err))
	}
}

// environment is everything run touches outside its arguments.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	loader *config.Loader
}

// flagKeys maps each command-line flag to the config key it overrides.
var flagKeys = []struct {
	flag, short, key, usage string
}{
	{"token", "", config.KeyToken, "GitHub token (default: $GITHUB_TOKEN)"},
	{"api-url", "", config.KeyAPIURL, "GitHub API root for Enterprise Server (default: $GITHUB_API_URL or " + defaultAPIURL + ")"},
	{"owner", "o", config.KeyOwner, "repository owner (default: from $GITHUB_REPOSITORY)"},
	{"repo", "r", config.KeyRepo, "repository name (default: from $GITHUB_REPOSITORY)"},
	{"branch", "b", config.KeyBranch, "branch the workflow ran on"},
	{"workflow", "w", config.KeyWorkflow, "workflow name as shown in the Actions tab"},
	{"artifact", "a", config.KeyArtifact, "artifact name"},
	{"commit", "c", config.KeyCommit, "only accept runs built from this commit SHA"},
	{"event", "e", config.KeyEvent, "only accept runs triggered by this event, such as push"},
	{"path", "p", config.KeyPath, "directory to extract the artifact into (default: .)"},
	{"per-page", "", config.KeyPerPage, "workflow runs requested per page (default: 10)"},
	{"max-pages", "", config.KeyMaxPages, "run pages to scan for the commit before giving up (default: 50)"},
	{"max-workflow-pages", "", config.KeyMaxWorkflowPages, "workflow catalog pages to scan (default: 100)"},
	{"retries", "", config.KeyRetries, "times to retry a failed download (default: 10)"},
	{"log-level", "", config.KeyLogLevel, "debug, info, warn or error (default: info)"},
	{"log-format", "", config.KeyLogFormat, "text or json (default: text)"},
	{"app-id", "", config.KeyAppID, "authenticate as this GitHub App instead of with a token"},
	{"app-installation-id", "", config.KeyAppInstallationID, "GitHub App installation (default: looked up from the repository)"},
	{"app-private-key", "", config.KeyAppPrivateKey, "path to the GitHub App private key"},
}

func run(ctx context.Context, env *environment, args []string) error {
	if len(args) > 0 && args[0] == "config" {
		return runConfig(env, args[1:])
	}

	flagSet := pflag.NewFlagSet("fetch-artifact", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	for _, f := range flagKeys {
		flagSet.StringP(f.flag, f.short, "", f.usage)
	}
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(env.stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(env.stdout, flagSet)
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	settings, _, err := config.Load(env.loader, collectFlags(flagSet))
	if err != nil {
		return err
	}
	if err := checkRequired(settings); err != nil {
		return err
	}

	logger, err := newLogger(env.stderr, settings)
	if err != nil {
		return err
	}

	apiURL := settings.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	repo := settings.Owner + "/" + settings.Repo

	result, err := download(ctx, env, logger, settings)
	if err != nil {
		return clierrors.Wrap(err, repo, apiURL)
	}

	if path := os.Getenv("GITHUB_OUTPUT"); path != "" {
		if err := writeOutputs(path, result, settings.Path); err != nil {
			logger.Warn("could not write step outputs", "path", path, "error", err)
		}
	}

	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func download(ctx context.Context, env *environment, logger *slog.Logger, s *config.Settings) (*fetchartifact.SearchResult, error) {
	token, err := resolveToken(ctx, logger, s)
	if err != nil {
		return nil, err
	}

	api, err := fetchartifact.NewActionsClient(ctx, token, s.APIURL)
	if err != nil {
		return nil, err
	}

	policy := fetchartifact.DefaultRetryPolicy()
	policy.MaxRetries = s.Retries

	req := fetchartifact.DownloadRequest{
		SearchRequest: fetchartifact.SearchRequest{
			Owner:            s.Owner,
			Repo:             s.Repo,
			Branch:           s.Branch,
			WorkflowName:     s.Workflow,
			ArtifactName:     s.Artifact,
			Commit:           s.Commit,
			WorkflowEvent:    s.Event,
			PerPage:          s.PerPage,
			MaxPages:         &s.MaxPages,
			MaxWorkflowPages: s.MaxWorkflowPages,
		},
		DownloadPath: s.Path,
	}

	return fetchartifact.Download(ctx, api, req,
		fetchartifact.WithLogger(logger),
		fetchartifact.WithReporter(progress.Detect(env.stderr, logger)),
		fetchartifact.WithRetryPolicy(policy),
	)
}

// resolveToken returns the configured token, or mints an installation
// token when only GitHub App credentials are set.
func resolveToken(ctx context.Context, logger *slog.Logger, s *config.Settings) (string, error) {
	if s.Token != "" {
		return s.Token, nil
	}

	pemBytes, err := os.ReadFile(s.AppPrivateKey)
	if err != nil {
		return "", fmt.Errorf("read app private key: %w", err)
	}

	tok, err := auth.InstallationToken(ctx, auth.AppConfig{
		AppID:          int64(s.AppID),
		PrivateKey:     pemBytes,
		InstallationID: int64(s.AppInstallationID),
		BaseURL:        s.APIURL,
	}, s.Owner, s.Repo)
	if err != nil {
		return "", err
	}
	logger.Debug("authenticated as GitHub App", "app_id", s.AppID, "expires_at", tok.ExpiresAt)
	return tok.Value, nil
}

// collectFlags returns the config overrides for flags given on the
// command line.
func collectFlags(flagSet *pflag.FlagSet) map[string]string {
	keys := make(map[string]string, len(flagKeys))
	for _, f := range flagKeys {
		keys[f.flag] = f.key
	}

	overrides := make(map[string]string)
	flagSet.Visit(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	return overrides
}

func checkRequired(s *config.Settings) error {
	if s.Token == "" && s.AppID != 0 && s.AppPrivateKey == "" {
		return clierrors.NewMissingSettingError(config.KeyAppPrivateKey)
	}
	if s.Token == "" && s.AppID == 0 {
		return clierrors.NewMissingSettingError(config.KeyToken)
	}

	for _, req := range []struct{ key, value string }{
		{config.KeyOwner, s.Owner},
		{config.KeyRepo, s.Repo},
		{config.KeyBranch, s.Branch},
		{config.KeyWorkflow, s.Workflow},
		{config.KeyArtifact, s.Artifact},
	} {
		if req.value == "" {
			return clierrors.NewMissingSettingError(req.key)
		}
	}
	return nil
}

func newLogger(w io.Writer, s *config.Settings) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyLogLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// writeOutputs appends step outputs in the runner's name=value format.
func writeOutputs(path string, result *fetchartifact.SearchResult, downloadPath string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "artifact-id=%d\n", result.Artifact.ID)
	fmt.Fprintf(&sb, "run-id=%d\n", result.WorkflowRun.ID)
	fmt.Fprintf(&sb, "head-sha=%s\n", result.WorkflowRun.HeadSHA)
	fmt.Fprintf(&sb, "download-path=%s\n", downloadPath)

	if _, err := io.WriteString(f, sb.String()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `fetch-artifact - download a GitHub Actions artifact

Finds the newest successful run of a workflow on a branch, picks the
named artifact from it and extracts it into --path.

Usage:
  fetch-artifact [flags]
  fetch-artifact config set [--local] <key> <value>
  fetch-artifact config unset [--local] <key>
  fetch-artifact config list

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
