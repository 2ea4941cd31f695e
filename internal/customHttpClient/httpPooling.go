package customHttpClient

import (
	"net/http"

	"github.com/akolanti/mlingest/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Transport is shared by every outbound HTTP client so connections to the same host are pooled.
func Transport() http.RoundTripper {
	return customTransport
}
