// Package auth authenticates fetch-artifact as a GitHub App.
//
// An app signs a short-lived JWT with its private key and exchanges it
// for an installation token, which is then used like any other token:
//
//	tok, err := auth.InstallationToken(ctx, auth.AppConfig{
//	    AppID:      12345,
//	    PrivateKey: pemBytes,
//	}, "getsentry", "sentry")
//	if err != nil {
//	    return err
//	}
//	api, err := fetchartifact.NewActionsClient(ctx, tok.Value, "")
//
// The installation is looked up from the repository unless
// AppConfig.InstallationID is set. Tokens are restricted to that one
// repository with actions:read.
package auth
