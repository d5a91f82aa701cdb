// Package fetchartifact finds and downloads a GitHub Actions artifact when
// only the workflow name, branch and artifact name are known.
//
// The work is split into two stages composed by a Downloader:
//
//   - Resolver: walks workflows, successful runs on the branch (optionally
//     pinned to a commit and trigger event) and their artifacts until the
//     named artifact is found
//   - Fetcher: obtains the signed archive URL, transfers the zip and
//     expands it into the download directory
//
// The Fetcher stage is retried with exponential backoff. An empty search
// is never retried and surfaces as ErrNoArtifacts.
//
// # Quick Start
//
//	api, _ := fetchartifact.NewActionsClient(ctx, token, "")
//
//	result, err := fetchartifact.Download(ctx, api, fetchartifact.DownloadRequest{
//	    SearchRequest: fetchartifact.SearchRequest{
//	        Owner:        "getsentry",
//	        Repo:         "sentry",
//	        Branch:       "master",
//	        WorkflowName: "acceptance",
//	        ArtifactName: "visual-snapshots",
//	    },
//	    DownloadPath: ".artifacts",
//	})
//	if errors.Is(err, fetchartifact.ErrNoArtifacts) {
//	    // nothing to compare against
//	}
//
// Subpackages:
//
//   - http: archive transfer client and bounded pagination
//   - archive: zip expansion
//   - progress: grouped progress output for terminals and Actions logs
//   - config: layered configuration for the CLI
//   - errors: user-facing CLI errors
//   - auth: GitHub App installation tokens
//   - testutil: test helpers and fixtures
package fetchartifact
