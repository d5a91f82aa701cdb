package fetchartifact

import (
	"time"

	"github.com/google/go-github/v57/github"
)

// Workflow is a workflow definition from the repository catalog.
type Workflow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	State string `json:"state,omitempty"`
}

// WorkflowRun is one execution of a workflow.
type WorkflowRun struct {
	ID         int64  `json:"id"`
	WorkflowID int64  `json:"workflow_id"`
	Name       string `json:"name,omitempty"`
	HeadBranch string `json:"head_branch"`
	HeadSHA    string `json:"head_sha"`

	// HeadRepository is the owner/repo full name the run was built from.
	// It differs from the target repository for runs triggered by forks.
	HeadRepository string `json:"head_repository"`

	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion,omitempty"`
	Event      string    `json:"event"`
	RunNumber  int       `json:"run_number"`
	HTMLURL    string    `json:"html_url"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Artifact is a named archive produced by a workflow run.
type Artifact struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	ArchiveDownloadURL string    `json:"archive_download_url"`
	SizeInBytes        int64     `json:"size_in_bytes"`
	Expired            bool      `json:"expired"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at,omitempty"`
}

// SearchResult pairs the matched artifact with the run that produced it.
type SearchResult struct {
	Artifact    Artifact    `json:"artifact"`
	WorkflowRun WorkflowRun `json:"workflowRun"`
}

func workflowFromGitHub(w *github.Workflow) Workflow {
	return Workflow{
		ID:    w.GetID(),
		Name:  w.GetName(),
		Path:  w.GetPath(),
		State: w.GetState(),
	}
}

func runFromGitHub(run *github.WorkflowRun) WorkflowRun {
	result := WorkflowRun{
		ID:             run.GetID(),
		WorkflowID:     run.GetWorkflowID(),
		Name:           run.GetName(),
		HeadBranch:     run.GetHeadBranch(),
		HeadSHA:        run.GetHeadSHA(),
		HeadRepository: run.GetHeadRepository().GetFullName(),
		Status:         run.GetStatus(),
		Conclusion:     run.GetConclusion(),
		Event:          run.GetEvent(),
		RunNumber:      run.GetRunNumber(),
		HTMLURL:        run.GetHTMLURL(),
		URL:            run.GetURL(),
	}

	if run.CreatedAt != nil {
		result.CreatedAt = run.CreatedAt.Time
	}
	if run.UpdatedAt != nil {
		result.UpdatedAt = run.UpdatedAt.Time
	}

	return result
}

func artifactFromGitHub(a *github.Artifact) Artifact {
	result := Artifact{
		ID:                 a.GetID(),
		Name:               a.GetName(),
		URL:                a.GetURL(),
		ArchiveDownloadURL: a.GetArchiveDownloadURL(),
		SizeInBytes:        a.GetSizeInBytes(),
		Expired:            a.GetExpired(),
	}

	if a.CreatedAt != nil {
		result.CreatedAt = a.CreatedAt.Time
	}
	if a.ExpiresAt != nil {
		result.ExpiresAt = a.ExpiresAt.Time
	}

	return result
}
