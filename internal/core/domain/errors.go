package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigMissing indicates required configuration (typically upstream
	// credentials) is unset. This is a configuration error, not a transient
	// one: the run aborts before any window is processed.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrAuthFailed indicates the upstream token exchange completed in
	// transport but returned no usable credential. Fatal to the run.
	ErrAuthFailed = errors.New("upstream authentication failed")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAttachmentUnavailable indicates an attachment download was skipped
	// after retry exhaustion. The owning record still reconciles.
	ErrAttachmentUnavailable = errors.New("attachment unavailable")

	// ErrUnknownClientType indicates an upstream client record carried a
	// type code outside the mapped set. The entity is skipped, not
	// defaulted.
	ErrUnknownClientType = errors.New("unknown client type code")

	// ErrImportInProgress indicates an import run is already active for the
	// source.
	ErrImportInProgress = errors.New("import in progress")
)
