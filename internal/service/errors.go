package service

import "errors"

var (
	// ErrNoCapacity means no host has both spare instance capacity and
	// a free port. Retryable from the caller's point of view.
	ErrNoCapacity = errors.New("no host capacity available")

	// ErrNoCredential means every active game license is bound to a
	// non-expired instance.
	ErrNoCredential = errors.New("no game license available")

	// ErrActiveInstance means the owner already holds a non-expired
	// instance.
	ErrActiveInstance = errors.New("owner already has an active server")

	// ErrInUse means a host or credential still backs a non-expired
	// instance and cannot be removed.
	ErrInUse = errors.New("resource is in use by an active instance")

	// ErrInvalidRequest means the provisioning request carried values
	// that must never reach the remote host.
	ErrInvalidRequest = errors.New("invalid provisioning request")
)
