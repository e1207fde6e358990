package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCacheMiss is returned by a SnapshotStore that holds no usable snapshot.
var ErrCacheMiss = errors.New("no cached weather snapshot")

// RequestError classifies a failed fetch by HTTP status. Transport failures are
// reported as 504, an unparseable location as 404 and a provider "unknown
// location" answer as 429.
type RequestError struct {
	StatusCode int    `json:"status_code"`
	Details    string `json:"details"`
}

func NewRequestError(code int) *RequestError {
	details := http.StatusText(code)
	if details == "" {
		details = "Unknown Status"
	}
	return &RequestError{StatusCode: code, Details: details}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, e.Details)
}

// IsRequestError extracts a RequestError from err's chain.
func IsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// ParseError reports a malformed payload or an unparseable date or hour label.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DerivationError reports a record missing what a derived field needs.
type DerivationError struct {
	What   string
	Reason string
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive %s: %s", e.What, e.Reason)
}
