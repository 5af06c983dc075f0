package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrGameNotFound indicates the requested game does not exist in the catalog
	ErrGameNotFound = errors.New("game not found")

	// ErrEmptyTitle indicates a game was submitted without a title
	ErrEmptyTitle = errors.New("game title is empty")

	// ErrInvalidRating indicates a rating outside the accepted range
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidUserID indicates a sync was requested without a user identifier
	ErrInvalidUserID = errors.New("user id is required")

	// ErrSourceOffline indicates the owned-games service is unreachable
	ErrSourceOffline = errors.New("owned-games service is unreachable")

	// ErrUnexpectedStatus indicates the owned-games service answered with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected status from owned-games service")

	// ErrMalformedResponse indicates a response body could not be decoded
	// or lacked a required member
	ErrMalformedResponse = errors.New("malformed response from owned-games service")

	// ErrStoreClosed indicates an operation on a closed catalog store
	ErrStoreClosed = errors.New("catalog store is closed")
)
