package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceFallback indicates the value came from a well-known variable
	// set by the CI runner, such as GITHUB_TOKEN.
	SourceFallback Source = "fallback"

	// SourceGlobal indicates the value came from
	// ~/.config/fetch-artifact/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from .fetch-artifact.yaml in
	// the git root.
	SourceLocal Source = "local"

	// SourceEnv indicates the value came from a FETCH_ARTIFACT_ variable.
	SourceEnv Source = "env"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
