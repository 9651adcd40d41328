package domain

import "errors"

// Sentinel errors for availability queries. Callers wrap these with
// fmt.Errorf("...: %w", ...) to attach prisoner/prison context; the delivery
// layer matches with errors.Is to pick a status code.
var (
	// ErrInvalidInput is returned for malformed prison codes, date windows, or
	// a client type not permitted for the operation (e.g. SYSTEM). Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned for an unknown prisoner, prison, or template reference.
	ErrNotFound = errors.New("not found")

	// ErrPrisonMismatch is returned when the prisoner's resolved prison differs
	// from the requested prison. Kept distinct from ErrNotFound so callers can
	// produce a precise message. Never retried.
	ErrPrisonMismatch = errors.New("prisoner is not at the requested prison")

	// ErrUpstreamUnavailable is returned when a collaborator lookup fails for a
	// reason other than "no data". The calling layer may retry a bounded number
	// of times; this engine only propagates.
	ErrUpstreamUnavailable = errors.New("upstream lookup failed")
)
