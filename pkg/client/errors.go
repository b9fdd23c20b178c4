package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidConfig is returned by New when the configuration is unusable.
var ErrInvalidConfig = errors.New("invalid client config")

// ErrorClass represents a classification of fetch failures. It only feeds
// logs and metrics; every non-200 response is handled the same way.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents any other status that is not 200.
	ErrorClassUnexpected ErrorClass = "unexpected"

	// ErrorClassNetwork represents transport failures: DNS, connect,
	// timeout, truncated body.
	ErrorClassNetwork ErrorClass = "network"
)

// FetchError describes a request that did not yield a 200 response.
type FetchError struct {
	// StatusCode is 0 for transport failures.
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("placeholder %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("placeholder %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the request never produced a response.
func (e *FetchError) IsTransport() bool {
	return e.ErrorClass == ErrorClassNetwork
}

// IsTransportError reports whether err is a transport-level FetchError.
func IsTransportError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.IsTransport()
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

// ClassifyStatus maps a non-200 status code to an ErrorClass.
// It returns "" for 200.
func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusOK:
		return ""
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500 && statusCode < 600:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
