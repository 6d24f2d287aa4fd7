package internal

import "errors"

var (
	ErrFetch       = errors.New("fetch failure")
	ErrParse       = errors.New("parse failure")
	ErrEmptyResult = errors.New("empty result")
)

type FailureKind string

const (
	FailureNone  FailureKind = "none"
	FailureFetch FailureKind = "fetch"
	FailureParse FailureKind = "parse"
	FailureEmpty FailureKind = "empty"
)

// Classify maps an error from a fetch cycle onto the failure taxonomy.
// Unknown errors count as fetch failures.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrEmptyResult):
		return FailureEmpty
	case errors.Is(err, ErrParse):
		return FailureParse
	default:
		return FailureFetch
	}
}
