package config

import (
	"fmt"
	"os"
	"strings"
)

// Configuration keys.
const (
	KeyToken            = "token"
	KeyAPIURL           = "api_url"
	KeyOwner            = "owner"
	KeyRepo             = "repo"
	KeyBranch           = "branch"
	KeyWorkflow         = "workflow"
	KeyArtifact         = "artifact"
	KeyCommit           = "commit"
	KeyEvent            = "event"
	KeyPath             = "path"
	KeyPerPage          = "per_page"
	KeyMaxPages         = "max_pages"
	KeyMaxWorkflowPages = "max_workflow_pages"
	KeyRetries          = "retries"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"

	// GitHub App credentials, used when no token is configured.
	KeyAppID             = "app_id"
	KeyAppInstallationID = "app_installation_id"
	KeyAppPrivateKey     = "app_private_key"
)

// Keys lists every key fetch-artifact reads.
var Keys = []string{
	KeyToken, KeyAPIURL, KeyOwner, KeyRepo, KeyBranch, KeyWorkflow, KeyArtifact,
	KeyCommit, KeyEvent, KeyPath, KeyPerPage, KeyMaxPages, KeyMaxWorkflowPages,
	KeyRetries, KeyLogLevel, KeyLogFormat,
	KeyAppID, KeyAppInstallationID, KeyAppPrivateKey,
}

// Defaults returns the built-in value of each key that has one.
func Defaults() map[string]string {
	return map[string]string{
		KeyPath:             ".",
		KeyPerPage:          "10",
		KeyMaxPages:         "50",
		KeyMaxWorkflowPages: "100",
		KeyRetries:          "10",
		KeyLogLevel:         "info",
		KeyLogFormat:        "text",
	}
}

// DefaultLoaderConfig is the layout used by the fetch-artifact CLI.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		EnvPrefix:       "FETCH_ARTIFACT_",
		GlobalConfigDir: "fetch-artifact",
		LocalConfigName: ".fetch-artifact.yaml",
		Keys:            Keys,
		Defaults:        Defaults(),
		Fallbacks: map[string][]string{
			KeyToken:  {"GITHUB_TOKEN", "GH_TOKEN"},
			KeyAPIURL: {"GITHUB_API_URL"},
		},
	}
}

// Settings is the typed view of a loaded configuration.
type Settings struct {
	Token            string
	APIURL           string
	Owner            string
	Repo             string
	Branch           string
	Workflow         string
	Artifact         string
	Commit           string
	Event            string
	Path             string
	PerPage          int
	MaxPages         int
	MaxWorkflowPages int
	Retries          int
	LogLevel         string
	LogFormat        string

	AppID             int
	AppInstallationID int
	// AppPrivateKey is the path to the app's PEM key file.
	AppPrivateKey string
}

// Load resolves all layers with the given flag overrides and converts
// the result into Settings. The raw Values are returned for diagnostics.
func Load(l *Loader, flags map[string]string) (*Settings, *Values, error) {
	v := l.Load(flags)

	s := &Settings{
		Token:     v.Get(KeyToken),
		APIURL:    v.Get(KeyAPIURL),
		Owner:     v.Get(KeyOwner),
		Repo:      v.Get(KeyRepo),
		Branch:    v.Get(KeyBranch),
		Workflow:  v.Get(KeyWorkflow),
		Artifact:  v.Get(KeyArtifact),
		Commit:    v.Get(KeyCommit),
		Event:     v.Get(KeyEvent),
		Path:      v.Get(KeyPath),
		LogLevel:  strings.ToLower(v.Get(KeyLogLevel)),
		LogFormat: strings.ToLower(v.Get(KeyLogFormat)),

		AppPrivateKey: v.Get(KeyAppPrivateKey),
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyPerPage, &s.PerPage},
		{KeyMaxPages, &s.MaxPages},
		{KeyMaxWorkflowPages, &s.MaxWorkflowPages},
		{KeyRetries, &s.Retries},
		{KeyAppID, &s.AppID},
		{KeyAppInstallationID, &s.AppInstallationID},
	}
	for _, f := range ints {
		n, err := v.Int(f.key)
		if err != nil {
			return nil, v, err
		}
		*f.dst = n
	}

	if s.Owner == "" || s.Repo == "" {
		applyRepository(s, v, os.Getenv("GITHUB_REPOSITORY"))
	}

	switch s.LogFormat {
	case "text", "json":
	default:
		return nil, v, fmt.Errorf("%s: unsupported format %q (want text or json)", KeyLogFormat, s.LogFormat)
	}

	return s, v, nil
}

// applyRepository fills owner and repo from an "owner/repo" string, as
// set by the Actions runner, without overriding either when configured.
func applyRepository(s *Settings, v *Values, repository string) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return
	}
	if s.Owner == "" {
		s.Owner = owner
		v.set(KeyOwner, owner, SourceFallback)
	}
	if s.Repo == "" {
		s.Repo = repo
		v.set(KeyRepo, repo, SourceFallback)
	}
}
