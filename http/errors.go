// Package http provides the archive transfer client and the bounded
// pagination helper used when walking provider listings.
package http

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for transfer failures.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates the request was refused, which for signed
	// URLs usually means the signature has expired.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")

	// ErrReadTimeout indicates the transfer stalled for longer than the read timeout.
	ErrReadTimeout = errors.New("read timeout")

	// ErrPageLimit indicates a Pager reached its page limit before the
	// listing was exhausted.
	ErrPageLimit = errors.New("page limit reached")
)

// APIError represents a failed response from a remote endpoint.
type APIError struct {
	// Service is the name of the remote (e.g., "artifact").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message from the response body or status text.
	Message string

	// Endpoint is the path that was requested. Query strings are left
	// out since signed URLs carry credentials there.
	Endpoint string

	// RequestID is the request ID for debugging (if available).
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// extractMessage pulls a human-readable message out of a JSON (GitHub)
// or XML (blob storage) error body.
func extractMessage(body []byte) string {
	var jsonResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &jsonResp) == nil {
		if jsonResp.Message != "" {
			return jsonResp.Message
		}
		if jsonResp.Error != "" {
			return jsonResp.Error
		}
	}

	var xmlResp struct {
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	}
	if xml.Unmarshal(body, &xmlResp) == nil {
		msg := strings.TrimSpace(strings.SplitN(xmlResp.Message, "\n", 2)[0])
		switch {
		case xmlResp.Code != "" && msg != "":
			return xmlResp.Code + ": " + msg
		case msg != "":
			return msg
		case xmlResp.Code != "":
			return xmlResp.Code
		}
	}

	return ""
}
