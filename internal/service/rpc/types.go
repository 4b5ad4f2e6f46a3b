package rpc

import "io"

// Availability is the part of a backend the API health check needs
type Availability interface {
	IsAvailable() bool
}

// BackendHandlerService owns a lazily built RPC backend of type T.
// HandleBackend fails with ErrBackendUnavailable outside Start and Close.
type BackendHandlerService[T any] interface {
	io.Closer
	Availability

	Start() error
	HandleBackend() (T, error)
}
