package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidPrivateKey indicates the app key is not an RSA key in PEM form.
	ErrInvalidPrivateKey = errors.New("invalid GitHub App private key")

	// ErrInvalidAppID indicates the app ID is missing or not positive.
	ErrInvalidAppID = errors.New("GitHub App ID must be positive")

	// ErrNoInstallation indicates the app is not installed on the repository.
	ErrNoInstallation = errors.New("GitHub App is not installed on the repository")
)
