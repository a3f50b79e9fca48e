package binance

import (
	"net/http"
	"time"
)

// baseTransportConfig returns the shared HTTP transport configuration used for
// archive downloads. Monthly zip files can run into tens of megabytes, so the
// response timeout is generous; connections are not reused because consecutive
// requests are already spaced out by the sequential download flow.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		ResponseHeaderTimeout: 2 * time.Minute,
		IdleConnTimeout:       0,
		TLSHandshakeTimeout:   10 * time.Second,
		DisableKeepAlives:     true,
	}
}

// newHTTPClient creates an HTTP client configured for archive requests.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   5 * time.Minute,
	}
}
