package rpc_backend

import "net/http"

type GenericBackendBuilder[T any] interface {
	Build() (T, error)
}

type ClientConfig struct {
	Endpoint          string
	NetworkPassphrase string

	// Optional, a plain http.Client is used when nil
	HTTPClient *http.Client
}
