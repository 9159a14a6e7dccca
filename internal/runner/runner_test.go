package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bankprobe/internal/checks"
	"github.com/bankprobe/internal/config"
)

func testPool() *Pool {
	return NewPool(config.Runner{PoolSize: 4, QueueSize: 64, MaxRPS: 1000}, nil, zap.NewNop())
}

func stubCheck(group, name string, err error) checks.Check {
	return checks.Check{
		Name:  name,
		Group: group,
		Run: func(ctx context.Context, env *checks.Env) error {
			return err
		},
	}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	p := testPool()
	ctx := context.Background()
	p.Start(ctx)

	const jobs = 20
	var collected []Result
	var collect sync.WaitGroup
	collect.Add(1)
	go func() {
		defer collect.Done()
		for r := range p.Results() {
			collected = append(collected, r)
		}
	}()

	for i := 0; i < jobs; i++ {
		var err error
		if i%5 == 0 {
			err = errors.New("boom")
		}
		job := Job{
			Suite: "suite-a",
			Check: stubCheck("members", fmt.Sprintf("check-%d", i), err),
		}
		require.NoError(t, p.Submit(ctx, job))
	}

	p.Stop()
	collect.Wait()

	require.Len(t, collected, jobs)
	failed := 0
	for _, r := range collected {
		assert.Equal(t, "suite-a", r.Suite)
		if !r.Passed() {
			failed++
		}
	}
	assert.Equal(t, 4, failed)
	assert.Equal(t, 0, p.Active())
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	// Zero workers, tiny queue: the second submit must block until the
	// context expires.
	p := NewPool(config.Runner{PoolSize: 0, QueueSize: 1, MaxRPS: 1000}, nil, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Submit(ctx, Job{Check: stubCheck("members", "a", nil)}))
	err := p.Submit(ctx, Job{Check: stubCheck("members", "b", nil)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSummaryAggregation(t *testing.T) {
	s := NewSummary()

	s.Record(Result{Group: "members", Name: "a", Duration: 10 * time.Millisecond})
	s.Record(Result{Group: "members", Name: "b", Duration: 20 * time.Millisecond, Err: errors.New("boom")})
	s.Record(Result{Group: "alerts", Name: "c", Duration: 5 * time.Millisecond})
	s.Finished = s.Started.Add(time.Second)

	passed, failed := s.Total()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	assert.False(t, s.Ok())
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "b", s.Failures[0].Name)

	p50, _, p99 := s.Groups["members"].Percentiles()
	assert.GreaterOrEqual(t, p99, p50)

	report := s.String()
	assert.Contains(t, report, "members")
	assert.Contains(t, report, "alerts")
	assert.Contains(t, report, "total: 2 passed, 1 failed")
	assert.Contains(t, report, "FAIL [members] b: boom")
}

func TestSummaryOkWhenEmpty(t *testing.T) {
	s := NewSummary()
	assert.True(t, s.Ok())
}

func TestRunnerCountChecks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Environments = []config.Environment{{Name: "local", APIBaseURL: "http://localhost:1"}}
	cfg.Suites = []config.Suite{
		{Name: "one", Environment: "local", Groups: []string{"members"}},
		{Name: "two", Environment: "local", Groups: []string{"members", "alerts"}},
	}

	r := New(cfg, nil, nil, zap.NewNop())
	want := len(checks.ByGroups([]string{"members"})) + len(checks.ByGroups([]string{"members", "alerts"}))
	assert.Equal(t, want, r.CountChecks())
}

func TestRunnerRejectsUnknownEnvironment(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Environments = []config.Environment{{Name: "local", APIBaseURL: "http://localhost:1"}}
	cfg.Suites = []config.Suite{{Name: "bad", Environment: "missing", Groups: []string{"members"}}}

	r := New(cfg, nil, nil, zap.NewNop())
	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown environment")
}

func TestRunnerObservesResults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Runner.PoolSize = 2
	cfg.Environments = []config.Environment{{Name: "local", APIBaseURL: "http://localhost:1", MaxRetries: -1}}
	// The security group's header check will fail against the dead
	// address, which is fine: we only assert the observer fires.
	cfg.Suites = []config.Suite{{Name: "one", Environment: "local", Groups: []string{"security"}}}

	r := New(cfg, nil, nil, zap.NewNop())
	var mu sync.Mutex
	seen := 0
	r.OnResult = func(Result) {
		mu.Lock()
		seen++
		mu.Unlock()
	}

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(checks.ByGroups([]string{"security"})), seen)
	passed, failed := summary.Total()
	assert.Equal(t, seen, passed+failed)
}
