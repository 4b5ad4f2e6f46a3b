package rpc_backend

import (
	"fmt"
	"net/http"
	"net/url"

	rpcclient "github.com/stellar/go/clients/rpcclient"
)

type ClientBuilder struct {
	ClientConfig ClientConfig
}

var _ GenericBackendBuilder[*rpcclient.Client] = (*ClientBuilder)(nil)

// Build will create a new rpcclient.Client from ClientConfig
func (b *ClientBuilder) Build() (*rpcclient.Client, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	httpClient := b.ClientConfig.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return rpcclient.NewClient(b.ClientConfig.Endpoint, httpClient), nil
}

func (b *ClientBuilder) validate() error {
	if b.ClientConfig.Endpoint == "" {
		return fmt.Errorf("ClientConfig.Endpoint value is empty, please provide a valid endpoint")
	}
	if _, err := url.ParseRequestURI(b.ClientConfig.Endpoint); err != nil {
		return fmt.Errorf("ClientConfig.Endpoint is not a valid URL: %w", err)
	}
	return nil
}
