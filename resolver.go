package fetchartifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/randalmurphal/fetchartifact/http"
	"github.com/randalmurphal/fetchartifact/progress"
)

const (
	// workflowsPerPage is the largest page the catalog endpoint serves.
	workflowsPerPage = 100

	// artifactsPerPage and maxArtifactPages bound the per-run artifact
	// listing. Runs rarely carry more than a handful of artifacts.
	artifactsPerPage = 100
	maxArtifactPages = 10

	// maxRunPages caps run pages fetched in total, including pages made up
	// entirely of fork runs, which do not count toward MaxPages.
	maxRunPages = 1000
)

// Resolver finds the newest artifact matching a SearchRequest.
//
// The search is depth-first with early exit: the first workflow whose name
// matches, the first page of eligible runs, and the first artifact whose
// name matches win.
type Resolver struct {
	api      ActionsAPI
	reporter progress.Reporter
}

// NewResolver creates a resolver. A nil reporter discards progress output.
func NewResolver(api ActionsAPI, reporter progress.Reporter) *Resolver {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Resolver{api: api, reporter: reporter}
}

// Resolve runs the search. Absence is reported through the Outcome kind
// with a nil error; errors are returned only when a listing call fails.
func (r *Resolver) Resolve(ctx context.Context, req SearchRequest) (Outcome, error) {
	req = req.withDefaults()

	r.reporter.StartGroup(fmt.Sprintf("Fetching artifact %q from workflow %q on branch %q",
		req.ArtifactName, req.WorkflowName, req.Branch))
	defer r.reporter.EndGroup()

	workflow, found, err := r.findWorkflow(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		r.reporter.Warning("workflow not found", "workflow", req.WorkflowName, "repo", req.fullName())
		return Outcome{Kind: OutcomeNoWorkflow}, nil
	}
	r.reporter.Debug("resolved workflow", "id", workflow.ID, "name", workflow.Name, "path", workflow.Path)

	runs, outcome, err := r.findRuns(ctx, req, workflow.ID)
	if err != nil {
		return Outcome{}, err
	}
	outcome.WorkflowID = workflow.ID
	if len(runs) == 0 {
		return outcome, nil
	}

	for _, run := range runs {
		artifact, found, err := r.findArtifact(ctx, req, run)
		if err != nil {
			return Outcome{}, err
		}
		if found {
			r.reporter.Info("found artifact",
				"artifact", artifact.Name, "id", artifact.ID, "run", run.HTMLURL)
			outcome.Kind = OutcomeFound
			outcome.Result = &SearchResult{Artifact: artifact, WorkflowRun: run}
			return outcome, nil
		}
	}

	r.reporter.Warning("no run carries the artifact", "artifact", req.ArtifactName, "runs", len(runs))
	outcome.Kind = OutcomeNoMatchingArtifact
	return outcome, nil
}

// findWorkflow scans the workflow catalog for an exact name match.
func (r *Resolver) findWorkflow(ctx context.Context, req SearchRequest) (Workflow, bool, error) {
	pager := http.NewPager(func(ctx context.Context, page int) ([]*github.Workflow, bool, error) {
		list, resp, err := r.api.ListWorkflows(ctx, req.Owner, req.Repo, &github.ListOptions{
			Page:    page,
			PerPage: workflowsPerPage,
		})
		if err != nil {
			return nil, false, fmt.Errorf("list workflows for %s (page %d): %w", req.fullName(), page, err)
		}
		return list.Workflows, resp.NextPage != 0, nil
	}, req.MaxWorkflowPages)

	match, found, err := pager.Find(ctx, func(w *github.Workflow) bool {
		return w.GetName() == req.WorkflowName
	})
	if errors.Is(err, http.ErrPageLimit) {
		r.reporter.Debug("workflow catalog page limit reached", "pages", pager.Pages())
		return Workflow{}, false, nil
	}
	if err != nil || !found {
		return Workflow{}, false, err
	}
	return workflowFromGitHub(match), true, nil
}

// findRuns returns the first batch of runs that qualify for artifact
// lookup. When it returns no runs, the Outcome says why.
func (r *Resolver) findRuns(ctx context.Context, req SearchRequest, workflowID int64) ([]WorkflowRun, Outcome, error) {
	pager := http.NewPager(func(ctx context.Context, page int) ([]*github.WorkflowRun, bool, error) {
		list, resp, err := r.api.ListWorkflowRunsByID(ctx, req.Owner, req.Repo, workflowID, &github.ListWorkflowRunsOptions{
			Branch: req.Branch,
			Status: "success",
			Event:  req.WorkflowEvent,
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: req.PerPage,
			},
		})
		if err != nil {
			return nil, false, fmt.Errorf("list runs for workflow %d (page %d): %w", workflowID, page, err)
		}
		return list.WorkflowRuns, resp.NextPage != 0, nil
	}, maxRunPages)

	var outcome Outcome
	for {
		page, ok, err := pager.NextPage(ctx)
		if errors.Is(err, http.ErrPageLimit) {
			r.reporter.Warning("gave up searching runs", "pages", pager.Pages())
			outcome.Kind = OutcomeExhaustedSearch
			return nil, outcome, nil
		}
		if err != nil {
			return nil, outcome, err
		}
		if !ok || len(page) == 0 {
			r.reporter.Warning("no successful runs",
				"workflow", workflowID, "branch", req.Branch, "commit", req.Commit)
			outcome.Kind = OutcomeNoSuccessfulRuns
			return nil, outcome, nil
		}

		eligible := make([]WorkflowRun, 0, len(page))
		for _, run := range page {
			if run.GetHeadRepository().GetFullName() != req.fullName() {
				continue
			}
			eligible = append(eligible, runFromGitHub(run))
		}
		if len(eligible) == 0 {
			r.reporter.Debug("only fork runs on page", "page", pager.Pages())
			continue
		}

		if req.Commit == "" {
			return eligible, outcome, nil
		}

		matching := eligible[:0]
		for _, run := range eligible {
			if run.HeadSHA == req.Commit {
				matching = append(matching, run)
			}
		}
		if len(matching) > 0 {
			return matching, outcome, nil
		}

		// The bound applies to pages counted before this one, so up to
		// MaxPages+2 pages are read.
		exhausted := outcome.PagesScanned > *req.MaxPages
		outcome.PagesScanned++
		r.reporter.Debug("commit not on page",
			"commit", req.Commit, "page", pager.Pages(), "scanned", outcome.PagesScanned)
		if exhausted {
			r.reporter.Warning("commit not found within page limit",
				"commit", req.Commit, "max_pages", *req.MaxPages)
			outcome.Kind = OutcomeExhaustedSearch
			return nil, outcome, nil
		}
	}
}

// findArtifact looks for the named artifact on one run.
func (r *Resolver) findArtifact(ctx context.Context, req SearchRequest, run WorkflowRun) (Artifact, bool, error) {
	r.reporter.Debug("checking run for artifacts", "run", run.ID, "sha", run.HeadSHA, "url", run.HTMLURL)

	pager := http.NewPager(func(ctx context.Context, page int) ([]*github.Artifact, bool, error) {
		list, resp, err := r.api.ListWorkflowRunArtifacts(ctx, req.Owner, req.Repo, run.ID, &github.ListOptions{
			Page:    page,
			PerPage: artifactsPerPage,
		})
		if err != nil {
			return nil, false, fmt.Errorf("list artifacts for run %d (page %d): %w", run.ID, page, err)
		}
		return list.Artifacts, resp.NextPage != 0, nil
	}, maxArtifactPages)

	seen := 0
	for {
		page, ok, err := pager.NextPage(ctx)
		if errors.Is(err, http.ErrPageLimit) {
			return Artifact{}, false, nil
		}
		if err != nil {
			return Artifact{}, false, err
		}
		if !ok {
			break
		}
		seen += len(page)
		for _, a := range page {
			if a.GetName() == req.ArtifactName {
				return artifactFromGitHub(a), true, nil
			}
		}
	}

	if seen == 0 {
		r.reporter.Warning("run has no artifacts", "run", run.ID, "url", run.HTMLURL)
	} else {
		r.reporter.Debug("artifact not on run", "run", run.ID, "artifacts", seen)
	}
	return Artifact{}, false, nil
}
