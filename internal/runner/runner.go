package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bankprobe/internal/browser"
	"github.com/bankprobe/internal/checks"
	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/internal/fixtures"
	"github.com/bankprobe/internal/probe"
	"github.com/bankprobe/pkg/apiclient"
)

// Runner builds one client per suite environment, feeds the pool, and
// collects the summary.
type Runner struct {
	cfg     *config.Config
	metrics *probe.Metrics
	logger  *zap.Logger
	session *browser.Session

	// OnResult, when set, observes every result as it arrives. Used by
	// the watch TUI for live progress.
	OnResult func(Result)
}

// New creates a runner. session may be nil when the browser is disabled.
func New(cfg *config.Config, metrics *probe.Metrics, session *browser.Session, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		session: session,
	}
}

// CountChecks returns how many checks the configured suites select.
func (r *Runner) CountChecks() int {
	n := 0
	for _, s := range r.cfg.Suites {
		n += len(checks.ByGroups(s.Groups))
	}
	return n
}

// Run executes every configured suite and returns the aggregated summary.
// A non-nil error means the run could not execute; individual check
// failures are reported through the summary instead.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	pool := NewPool(r.cfg.Runner, r.metrics, r.logger)
	pool.Start(ctx)

	summary := NewSummary()
	var collect sync.WaitGroup
	collect.Add(1)
	go func() {
		defer collect.Done()
		for res := range pool.Results() {
			summary.Record(res)
			if r.OnResult != nil {
				r.OnResult(res)
			}
		}
	}()

	var envs []*checks.Env
	submitErr := func() error {
		for _, suite := range r.cfg.Suites {
			envCfg, ok := r.cfg.EnvironmentByName(suite.Environment)
			if !ok {
				return fmt.Errorf("suite %q references unknown environment %q", suite.Name, suite.Environment)
			}

			env := r.buildEnv(envCfg, suite)
			envs = append(envs, env)

			for _, c := range checks.ByGroups(suite.Groups) {
				if err := pool.Submit(ctx, Job{Suite: suite.Name, Check: c, Env: env}); err != nil {
					return err
				}
			}
		}
		return nil
	}()

	pool.Stop()
	collect.Wait()
	summary.Finished = time.Now()

	for _, env := range envs {
		env.Client.Close()
	}

	if submitErr != nil {
		return summary, submitErr
	}
	return summary, nil
}

// buildEnv constructs the per-suite check environment. Clients are
// explicit per-suite instances, never shared globals, so parallel suites
// stay isolated.
func (r *Runner) buildEnv(envCfg config.Environment, suite config.Suite) *checks.Env {
	var onRetry func()
	if r.metrics != nil {
		retries := r.metrics.RetriesTotal.WithLabelValues(envCfg.Name)
		onRetry = retries.Inc
	}

	client := apiclient.New(apiclient.Config{
		Name:       envCfg.Name,
		BaseURL:    envCfg.APIBaseURL,
		Timeout:    envCfg.Timeout,
		MaxRetries: envCfg.MaxRetries,
		HTTP2:      envCfg.HTTP2,
		Logger:     r.logger,
		OnRetry:    onRetry,
	})
	for k, v := range envCfg.Headers {
		client.SetHeader(k, v)
	}
	if envCfg.Credentials.APIToken != "" {
		client.SetAuthToken(envCfg.Credentials.APIToken)
	}

	return &checks.Env{
		Client:      client,
		Gen:         fixtures.NewGenerator(suite.Seed),
		Browser:     r.session,
		WebBaseURL:  envCfg.WebBaseURL,
		Credentials: envCfg.Credentials,
		Logger:      r.logger.With(zap.String("suite", suite.Name)),
	}
}
