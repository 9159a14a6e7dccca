package apiclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/http2"
)

// RequestContext couples a transport with the header set baked in at
// creation time. A client owns the context it creates lazily; a context
// borrowed from a browser session is owned by that session instead.
type RequestContext struct {
	httpClient *http.Client
	headers    map[string]string
}

// NewRequestContext wraps an existing http.Client, typically one whose
// cookie jar is shared with a browser session.
func NewRequestContext(hc *http.Client, headers map[string]string) *RequestContext {
	merged := make(map[string]string, len(headers))
	for k, v := range headers {
		merged[k] = v
	}
	return &RequestContext{httpClient: hc, headers: merged}
}

// newOwnedContext builds a context from scratch: fresh transport, fresh
// cookie jar, and the given headers.
func newOwnedContext(headers map[string]string, timeout time.Duration, useHTTP2, tlsInsecure bool) (*RequestContext, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var rt http.RoundTripper
	if useHTTP2 {
		rt = &http2.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: tlsInsecure,
			},
		}
	} else {
		rt = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: tlsInsecure,
			},
		}
	}

	return NewRequestContext(&http.Client{
		Transport: rt,
		Jar:       jar,
		Timeout:   timeout,
	}, headers), nil
}

// Do issues the request with the context's headers applied. Headers already
// set on the request win.
func (rc *RequestContext) Do(req *http.Request) (*http.Response, error) {
	for k, v := range rc.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return rc.httpClient.Do(req)
}

// Jar exposes the context's cookie jar, if any.
func (rc *RequestContext) Jar() http.CookieJar {
	return rc.httpClient.Jar
}

// Close releases idle transport connections.
func (rc *RequestContext) Close() error {
	rc.httpClient.CloseIdleConnections()
	return nil
}
