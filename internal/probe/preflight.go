package probe

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/pkg/apiclient"
)

// Preflight verifies every environment answers its health endpoint before
// any suite runs, so an unreachable deployment fails fast instead of
// burning the whole retry budget check by check.
type Preflight struct {
	envs    []config.Environment
	metrics *Metrics
	logger  *zap.Logger
}

// NewPreflight creates a pre-flight checker.
func NewPreflight(envs []config.Environment, metrics *Metrics, logger *zap.Logger) *Preflight {
	return &Preflight{envs: envs, metrics: metrics, logger: logger}
}

// Run pings every environment concurrently. It returns an error naming
// each environment that did not answer.
func (p *Preflight) Run(ctx context.Context) error {
	type outcome struct {
		name string
		err  error
	}

	results := make([]outcome, len(p.envs))
	var wg sync.WaitGroup

	for i, env := range p.envs {
		wg.Add(1)
		go func(i int, env config.Environment) {
			defer wg.Done()
			results[i] = outcome{name: env.Name, err: p.ping(ctx, env)}
		}(i, env)
	}
	wg.Wait()

	var down []string
	for _, r := range results {
		up := r.err == nil
		if p.metrics != nil {
			v := 0.0
			if up {
				v = 1.0
			}
			p.metrics.EnvironmentUp.WithLabelValues(r.name).Set(v)
		}
		if up {
			p.logger.Info("environment reachable", zap.String("environment", r.name))
		} else {
			p.logger.Error("environment unreachable",
				zap.String("environment", r.name),
				zap.Error(r.err))
			down = append(down, r.name)
		}
	}

	if len(down) > 0 {
		return fmt.Errorf("environments unreachable: %v", down)
	}
	return nil
}

// ping issues a single non-retried health request.
func (p *Preflight) ping(ctx context.Context, env config.Environment) error {
	client := apiclient.New(apiclient.Config{
		Name:    env.Name + "-preflight",
		BaseURL: env.APIBaseURL,
		Timeout: env.Timeout,
		HTTP2:   env.HTTP2,
		Logger:  p.logger,
	})
	defer client.Close()

	noRetry := 0
	resp, err := client.Do(ctx, "GET", "/api/health", &apiclient.RequestOptions{Retries: &noRetry})
	if err != nil {
		return err
	}
	if resp.Status != 200 {
		return fmt.Errorf("health endpoint returned %d", resp.Status)
	}
	return nil
}
