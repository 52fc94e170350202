package domain

import "github.com/cockroachdb/errors"

// Error classes. Causes are wrapped and then marked with one of these, so
// callers test with errors.Is while messages keep the underlying cause.
var (
	// ErrMalformedData: the axiom document failed structural or field validation.
	ErrMalformedData = errors.New("malformed data")

	// ErrConfiguration: a required document or setting is missing or unreadable.
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstream: the chat capability failed or returned no content.
	ErrUpstream = errors.New("upstream error")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// MalformedData wraps err with msg and classifies it as ErrMalformedData.
func MalformedData(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrMalformedData)
}

// Configuration wraps err with msg and classifies it as ErrConfiguration.
func Configuration(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrConfiguration)
}

// Upstream wraps err with msg and classifies it as ErrUpstream.
func Upstream(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrUpstream)
}
