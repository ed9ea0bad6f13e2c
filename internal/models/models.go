package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotImage marks a response whose declared Content-Type is not image/*.
	ErrNotImage = errors.New("not an image")
	// ErrDuplicate marks a body whose hash was already saved in this run.
	ErrDuplicate = errors.New("duplicate content")
	// ErrNoURLs is returned when the input holds no URLs at all.
	ErrNoURLs = errors.New("no URLs provided")
)

// Content is a single fetched response.
type Content struct {
	Data        []byte
	ContentType string
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// NetworkError wraps transport failures and timeouts.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response. It counts as a network failure.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
	}
	return fmt.Sprintf("%d for url: %s", e.StatusCode, e.URL)
}

// FilesystemError wraps a failure to create the save directory or write an image.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return e.Err.Error()
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// IsNetwork reports whether err came from the request itself rather than from processing.
func IsNetwork(err error) bool {
	var ne *NetworkError
	var se *StatusError
	return errors.As(err, &ne) || errors.As(err, &se)
}

// Outcome classifies what happened to one URL.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeNotImage
	OutcomeDuplicate
	OutcomeNetworkFailure
	OutcomeFilesystemFailure
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeNotImage:
		return "not_image"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNetworkFailure:
		return "network_failure"
	case OutcomeFilesystemFailure:
		return "filesystem_failure"
	case OutcomeUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Skipped reports whether the outcome is a recognised skip rather than a failure.
func (o Outcome) Skipped() bool {
	return o == OutcomeNotImage || o == OutcomeDuplicate
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool {
	return o == OutcomeNetworkFailure || o == OutcomeFilesystemFailure || o == OutcomeUnexpected
}

// Result is the per-URL record returned by the fetcher.
type Result struct {
	URL      string
	Outcome  Outcome
	Filename string
	Path     string
	Hash     string
	Size     int
	Err      error
}
