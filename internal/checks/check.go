// Package checks holds the black-box checks run against a banking
// deployment. Every check drives the system through its public HTTP API
// (and optionally the browser) and owns its own assertions.
package checks

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bankprobe/internal/browser"
	"github.com/bankprobe/internal/config"
	"github.com/bankprobe/internal/fixtures"
	"github.com/bankprobe/pkg/apiclient"
)

// Env is everything a check needs at run time. One Env is built per suite
// by the run setup and passed down; checks share the client and generator
// but hold no package-level state.
type Env struct {
	Client      *apiclient.Client
	Gen         *fixtures.Generator
	Browser     *browser.Session
	WebBaseURL  string
	Credentials config.Credentials
	Logger      *zap.Logger
}

// Check is one named black-box scenario.
type Check struct {
	Name  string
	Group string
	Run   func(ctx context.Context, env *Env) error
}

// All returns every registered check in declaration order.
func All() []Check {
	var out []Check
	out = append(out, memberChecks()...)
	out = append(out, accountChecks()...)
	out = append(out, transactionChecks()...)
	out = append(out, transferChecks()...)
	out = append(out, statementChecks()...)
	out = append(out, alertChecks()...)
	out = append(out, securityChecks()...)
	return out
}

// ByGroups filters the registry down to the named groups.
func ByGroups(groups []string) []Check {
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	var out []Check
	for _, c := range All() {
		if want[c.Group] {
			out = append(out, c)
		}
	}
	return out
}

// expectStatus asserts that a call failed with the given HTTP status.
func expectStatus(err error, status int) (*apiclient.APIError, error) {
	if err == nil {
		return nil, fmt.Errorf("expected status %d, got success", status)
	}
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return nil, fmt.Errorf("expected status %d, got error: %w", status, err)
	}
	if apiErr.Status != status {
		return nil, fmt.Errorf("expected status %d, got %d", status, apiErr.Status)
	}
	return apiErr, nil
}

// objectData asserts the decoded body is a JSON object.
func objectData(resp *apiclient.Response) (map[string]any, error) {
	obj, ok := resp.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object body, got %T", resp.Data)
	}
	return obj, nil
}

// stringField extracts a string field from a decoded object.
func stringField(obj map[string]any, field string) (string, error) {
	v, ok := obj[field].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("response missing string field %q", field)
	}
	return v, nil
}

// numberField extracts a numeric field from a decoded object.
func numberField(obj map[string]any, field string) (float64, error) {
	v, ok := obj[field].(float64)
	if !ok {
		return 0, fmt.Errorf("response missing numeric field %q", field)
	}
	return v, nil
}
