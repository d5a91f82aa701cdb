// Package config resolves fetch-artifact settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. FETCH_ARTIFACT_* environment variables
//  3. Local config (.fetch-artifact.yaml in the git root)
//  4. Global config (~/.config/fetch-artifact/config.yaml)
//  5. Runner variables (GITHUB_TOKEN, GITHUB_API_URL, GITHUB_REPOSITORY)
//  6. Built-in defaults
//
// # Basic Usage
//
//	loader := config.NewLoader(config.DefaultLoaderConfig())
//	settings, values, err := config.Load(loader, flagValues)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(settings.Workflow, values.Source(config.KeyWorkflow))
//
// # Sources
//
// Each value remembers where it came from (see Source), so the CLI can
// explain why a setting has the value it has.
//
// # Saving
//
// Loader.Set and Loader.Unset edit the global or local file in place.
// Tokens are never written to the local file, which usually lives in a
// shared repository.
package config
