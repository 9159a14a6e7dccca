package browser

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// browserJar adapts the browser's cookie store to http.CookieJar. Reads and
// writes go through CDP, so a bound API client and the pages always agree
// on session state. CDP failures are logged and degrade to an empty jar;
// cookie plumbing must not fail the calling check.
type browserJar struct {
	browser *rod.Browser
	logger  *zap.Logger
}

func newBrowserJar(b *rod.Browser, logger *zap.Logger) *browserJar {
	return &browserJar{browser: b, logger: logger}
}

// SetCookies stores response cookies into the browser.
func (j *browserJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = u.Hostname()
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if !c.Expires.IsZero() {
			p.Expires = proto.TimeSinceEpoch(c.Expires.Unix())
		}
		params = append(params, p)
	}
	if len(params) == 0 {
		return
	}
	if err := j.browser.SetCookies(params); err != nil {
		j.logger.Warn("failed to store cookies in browser", zap.Error(err))
	}
}

// Cookies returns the browser cookies applicable to u.
func (j *browserJar) Cookies(u *url.URL) []*http.Cookie {
	all, err := j.browser.GetCookies()
	if err != nil {
		j.logger.Warn("failed to read cookies from browser", zap.Error(err))
		return nil
	}

	var out []*http.Cookie
	for _, c := range all {
		if !domainMatch(u.Hostname(), c.Domain) || !pathMatch(u.Path, c.Path) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}

func domainMatch(host, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == "" {
		reqPath = "/"
	}
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	return reqPath == cookiePath || strings.HasPrefix(reqPath, strings.TrimSuffix(cookiePath, "/")+"/")
}
