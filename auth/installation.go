package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
)

// AppConfig identifies a GitHub App and, optionally, one installation.
type AppConfig struct {
	AppID int64

	// PrivateKey is the PEM encoded app key.
	PrivateKey []byte

	// InstallationID selects the installation. Zero looks it up from the
	// repository being searched.
	InstallationID int64

	// BaseURL is the API root for GitHub Enterprise Server. Empty means
	// github.com.
	BaseURL string
}

// Token is an installation access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// InstallationToken exchanges an app JWT for a token that can read the
// Actions data of owner/repo and nothing else.
func InstallationToken(ctx context.Context, cfg AppConfig, owner, repo string) (*Token, error) {
	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	signed, err := GenerateAppJWT(cfg.AppID, key, time.Now())
	if err != nil {
		return nil, err
	}

	client := github.NewClient(nil).WithAuthToken(signed)
	if cfg.BaseURL != "" {
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure API URL: %w", err)
		}
	}

	id := cfg.InstallationID
	if id == 0 {
		inst, resp, err := client.Apps.FindRepositoryInstallation(ctx, owner, repo)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s/%s", ErrNoInstallation, owner, repo)
			}
			return nil, fmt.Errorf("find installation for %s/%s: %w", owner, repo, err)
		}
		id = inst.GetID()
	}

	tok, _, err := client.Apps.CreateInstallationToken(ctx, id, &github.InstallationTokenOptions{
		Repositories: []string{repo},
		Permissions:  &github.InstallationPermissions{Actions: github.String("read")},
	})
	if err != nil {
		return nil, fmt.Errorf("create installation token (installation %d): %w", id, err)
	}

	return &Token{
		Value:     tok.GetToken(),
		ExpiresAt: tok.GetExpiresAt().Time,
	}, nil
}
