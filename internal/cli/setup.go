package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bankprobe/internal/browser"
	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/internal/logging"
	"github.com/bankprobe/internal/probe"
	"github.com/bankprobe/internal/runner"
)

// harness bundles everything a run needs, built once per command.
type harness struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *probe.Metrics
	server  *probe.Server
	session *browser.Session
	runner  *runner.Runner
}

// buildHarness loads config and wires the run-time pieces together.
// Clients are constructed inside the runner per suite; nothing here is a
// process-wide singleton.
func buildHarness(configPath string) (*harness, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	h := &harness{cfg: cfg, logger: logger}

	if cfg.Metrics.Enabled {
		h.metrics = probe.NewMetrics()
		h.server = probe.NewServer(cfg.Metrics, logger)
	}
	if cfg.Browser.Enabled {
		h.session = browser.New(cfg.Browser, logger)
	}

	h.runner = runner.New(cfg, h.metrics, h.session, logger)
	return h, nil
}

// start runs the pre-flight check and the metrics server.
func (h *harness) start(ctx context.Context) error {
	if h.server != nil {
		go func() {
			if err := h.server.Start(); err != nil && err != http.ErrServerClosed {
				h.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	pf := probe.NewPreflight(h.cfg.Environments, h.metrics, h.logger)
	if err := pf.Run(ctx); err != nil {
		return err
	}
	return nil
}

// stop tears the harness down.
func (h *harness) stop() {
	if h.session != nil {
		h.session.Close()
	}
	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Stop(ctx); err != nil {
			h.logger.Warn("failed to stop metrics server", zap.Error(err))
		}
	}
	_ = h.logger.Sync()
}
