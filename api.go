package fetchartifact

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// ActionsAPI is the slice of the GitHub Actions REST API the search and
// fetch stages use. *github.ActionsService satisfies it.
type ActionsAPI interface {
	ListWorkflows(ctx context.Context, owner, repo string, opts *github.ListOptions) (*github.Workflows, *github.Response, error)
	ListWorkflowRunsByID(ctx context.Context, owner, repo string, workflowID int64, opts *github.ListWorkflowRunsOptions) (*github.WorkflowRuns, *github.Response, error)
	ListWorkflowRunArtifacts(ctx context.Context, owner, repo string, runID int64, opts *github.ListOptions) (*github.ArtifactList, *github.Response, error)
	DownloadArtifact(ctx context.Context, owner, repo string, artifactID int64, maxRedirects int) (*url.URL, *github.Response, error)
}

var _ ActionsAPI = (*github.ActionsService)(nil)

// NewActionsClient creates an authenticated Actions API handle.
// token is a personal access token or the workflow's GITHUB_TOKEN.
// baseURL selects a GitHub Enterprise Server API root; empty uses github.com.
func NewActionsClient(ctx context.Context, token, baseURL string) (*github.ActionsService, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse API URL %q: %w", baseURL, err)
		}
	}

	return client.Actions, nil
}
