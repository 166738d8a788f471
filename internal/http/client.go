// Package http builds the HTTP clients used to talk to the filedeck backend
// and the identity provider: proxy handling, upload tuning and GET retries.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/filedeck/filedeck/internal/config"
)

// CreateTransferClient creates an HTTP client for streaming uploads.
//
// Key features:
//   - Proxy support (uses ConfigureHTTPClient as base)
//   - No overall timeout; uploads run until the caller's context is cancelled
//   - HTTP/2 with a runtime toggle (DISABLE_HTTP2 env var), off when proxying
//   - Disabled compression (uploads are mostly already-compressed media)
//
// If cfg is nil, proxy settings are read from environment variables.
func CreateTransferClient(cfg *config.Config) (*nethttp.Client, error) {
	var baseClient *nethttp.Client
	if cfg != nil {
		var err error
		baseClient, err = ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		tr := newBaseTransport()
		tr.Proxy = nethttp.ProxyFromEnvironment
		baseClient = &nethttp.Client{Transport: tr}
	}

	baseClient.Timeout = 0

	// NTLM wraps the transport in a negotiator; leave it untouched
	tr, ok := baseClient.Transport.(*nethttp.Transport)
	if !ok {
		return baseClient, nil
	}

	tr.DisableCompression = true
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	var active bool
	if cfg != nil {
		active = proxyActive(cfg)
	} else {
		active = envProxySet()
	}

	// Proxies often break HTTP/2 multiplexing mid-transfer; FORCE_HTTP2=true overrides
	if os.Getenv("DISABLE_HTTP2") == "true" || (active && os.Getenv("FORCE_HTTP2") != "true") {
		disableHTTP2(tr)
	}

	baseClient.Transport = tr
	return baseClient, nil
}

func disableHTTP2(tr *nethttp.Transport) {
	tr.ForceAttemptHTTP2 = false
	tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
}

func envProxySet() bool {
	return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
		os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
}
