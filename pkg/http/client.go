package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole panel round trip when the caller does not pick one
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when TransportConfig.UserAgent is empty
const DefaultUserAgent = "mofh-go"

// TransportConfig tunes the transport used to reach the panel
type TransportConfig struct {
	// The panel is one host, so per-host and total idle limits are the same.
	MaxIdleConns    int
	MaxConnsPerHost int
	IdleConnTimeout time.Duration
	KeepAlive       time.Duration

	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	MinTLSVersion uint16
	UserAgent     string
}

// PanelClientConfig returns the transport settings for the reseller panel API.
func PanelClientConfig() *TransportConfig {
	return &TransportConfig{
		MaxIdleConns:    10,
		MaxConnsPerHost: 20,
		IdleConnTimeout: 90 * time.Second,
		KeepAlive:       60 * time.Second,

		DialTimeout:           10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second, // createacct can be slow

		MinTLSVersion: tls.VersionTLS12,
		UserAgent:     DefaultUserAgent,
	}
}

// NewHTTPClient builds an *http.Client from cfg. A nil cfg means
// PanelClientConfig; timeout bounds each request including the body read.
func NewHTTPClient(cfg *TransportConfig, timeout time.Duration) *http.Client {
	if cfg == nil {
		cfg = PanelClientConfig()
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		TLSClientConfig:       &tls.Config{MinVersion: cfg.MinTLSVersion},
		ForceAttemptHTTP2:     true,
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &http.Client{
		Transport: &userAgentTransport{next: transport, userAgent: userAgent},
		Timeout:   timeout,
	}
}

// userAgentTransport sets User-Agent on requests that carry none
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
