// Package browser manages the optional Chrome session and lends its cookie
// store to the API client, so HTTP calls and page navigation share
// authentication state.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/pkg/apiclient"
)

// Session owns one browser instance for the lifetime of a run.
type Session struct {
	cfg      config.Browser
	logger   *zap.Logger
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New creates a session. The browser is not launched until Start.
func New(cfg config.Browser, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{cfg: cfg, logger: logger}
}

// Start connects to an existing Chrome or launches a new one.
func (s *Session) Start(ctx context.Context) error {
	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			return nil
		}
		s.logger.Warn("stale browser connection, reconnecting")
		_ = s.browser.Close()
		s.browser = nil
	}

	controlURL := s.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(s.cfg.Headless)
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("failed to launch chrome: %w", err)
		}
		s.launcher = l
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("failed to connect to chrome: %w", err)
	}

	s.browser = b
	s.logger.Info("browser session started", zap.Bool("headless", s.cfg.Headless))
	return nil
}

// Open creates a page and navigates it to url, waiting for load.
func (s *Session) Open(url string) (*rod.Page, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("browser session not started")
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	timeout := s.cfg.NavTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return page, nil
}

// RequestContext builds a borrowable request context whose cookie jar reads
// and writes the browser's cookie store directly. Binding it to an API
// client makes API login cookies visible to pages and vice versa.
func (s *Session) RequestContext(headers map[string]string, timeout time.Duration) (*apiclient.RequestContext, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("browser session not started")
	}

	hc := &http.Client{
		Jar:     newBrowserJar(s.browser, s.logger),
		Timeout: timeout,
	}
	return apiclient.NewRequestContext(hc, headers), nil
}

// Close shuts the browser down, including a launched Chrome process.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("failed to close browser", zap.Error(err))
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
}
