package runner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Result is the outcome of one executed check.
type Result struct {
	Suite    string
	Group    string
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// GroupStats aggregates results for one check group.
type GroupStats struct {
	Passed  int
	Failed  int
	latency *hdrhistogram.Histogram
}

// Summary aggregates a whole run.
type Summary struct {
	Started  time.Time
	Finished time.Time
	Groups   map[string]*GroupStats
	Failures []Result
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		Started: time.Now(),
		Groups:  make(map[string]*GroupStats),
	}
}

// Record adds one result. Not safe for concurrent use; the collector
// goroutine is the only writer.
func (s *Summary) Record(r Result) {
	g, ok := s.Groups[r.Group]
	if !ok {
		// 1ms to 10min, 3 significant figures.
		g = &GroupStats{latency: hdrhistogram.New(1, 600_000, 3)}
		s.Groups[r.Group] = g
	}

	_ = g.latency.RecordValue(r.Duration.Milliseconds())
	if r.Passed() {
		g.Passed++
	} else {
		g.Failed++
		s.Failures = append(s.Failures, r)
	}
}

// Total returns overall pass/fail counts.
func (s *Summary) Total() (passed, failed int) {
	for _, g := range s.Groups {
		passed += g.Passed
		failed += g.Failed
	}
	return passed, failed
}

// Ok reports whether every check passed.
func (s *Summary) Ok() bool {
	_, failed := s.Total()
	return failed == 0
}

// Percentiles returns p50/p95/p99 latency in milliseconds for a group.
func (g *GroupStats) Percentiles() (p50, p95, p99 int64) {
	return g.latency.ValueAtQuantile(50), g.latency.ValueAtQuantile(95), g.latency.ValueAtQuantile(99)
}

// String renders a plain-text report.
func (s *Summary) String() string {
	var b strings.Builder

	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := s.Groups[name]
		p50, p95, p99 := g.Percentiles()
		fmt.Fprintf(&b, "%-14s %3d passed %3d failed   p50=%dms p95=%dms p99=%dms\n",
			name, g.Passed, g.Failed, p50, p95, p99)
	}

	passed, failed := s.Total()
	fmt.Fprintf(&b, "total: %d passed, %d failed in %s\n",
		passed, failed, s.Finished.Sub(s.Started).Round(time.Millisecond))

	for _, f := range s.Failures {
		fmt.Fprintf(&b, "FAIL [%s] %s: %v\n", f.Group, f.Name, f.Err)
	}
	return b.String()
}
