package auth

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// GitHub rejects app JWTs that expire more than ten minutes after they
// were issued. IssuedAt is backdated to absorb clock drift.
const (
	AppTokenTTL = 10 * time.Minute
	clockSkew   = 60 * time.Second
)

// AppClaims are the claims GitHub reads from an app JWT.
type AppClaims struct {
	jwt.RegisteredClaims
}

// ParsePrivateKey decodes a PEM encoded RSA key as downloaded from the
// app settings page.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// GenerateAppJWT signs a JWT identifying the app, valid from now.
func GenerateAppJWT(appID int64, key *rsa.PrivateKey, now time.Time) (string, error) {
	if appID <= 0 {
		return "", ErrInvalidAppID
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	issued := now.Add(-clockSkew)
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    strconv.FormatInt(appID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(AppTokenTTL)),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(key)
}
