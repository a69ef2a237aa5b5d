package service

import "errors"

// Failure outcomes surfaced to the API layer. Each is distinct so handlers
// can render a specific message; none is ever collapsed into a generic error.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrNotAuthorized = errors.New("not the owner")
	ErrValidation    = errors.New("invalid input")
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Share redemption guards, checked in this order: token lookup, expiry,
	// password, redemption limit, file availability.
	ErrInvalidToken    = errors.New("share token invalid")
	ErrExpired         = errors.New("share link expired")
	ErrInvalidPassword = errors.New("share password mismatch")
	ErrLimitReached    = errors.New("share download limit reached")
	ErrFileUnavailable = errors.New("shared file unavailable")
)
