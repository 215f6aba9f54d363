package domain

import "errors"

// ErrInvalidNamespace is returned when a namespace is empty or contains an empty segment.
var ErrInvalidNamespace = errors.New("invalid namespace")

// ErrMalformedAction is returned when a wire action cannot be decoded into a transition action.
var ErrMalformedAction = errors.New("malformed transition action")

// ErrUnknownOperation is returned when an operation name or value is not one of stage, commit, stash, fail.
var ErrUnknownOperation = errors.New("unknown transition operation")

// ErrCheckpointNotFound is returned when a checkpoint key cannot be found in the store.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// ErrSessionNotOpen is returned when dispatching to a session that was never opened, or was closed or reset.
var ErrSessionNotOpen = errors.New("session not open")

// ErrCheckpointFailed is returned when confirmed state was applied in memory but could not be saved.
var ErrCheckpointFailed = errors.New("checkpoint failed")
