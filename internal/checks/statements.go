package checks

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bankprobe/pkg/schema"
)

var statementSchema = &schema.Schema{
	Type: "object",
	Required: []string{"account_id", "period_start", "period_end", "entries"},
	Properties: map[string]*schema.Schema{
		"account_id":   {Type: "string"},
		"period_start": {Type: "string", Format: "date"},
		"period_end":   {Type: "string", Format: "date"},
		"entries":      {Type: "array"},
	},
}

func statementChecks() []Check {
	return []Check{
		{Name: "statement json for period", Group: "statements", Run: statementJSON},
		{Name: "statement pdf download", Group: "statements", Run: statementPDF},
		{Name: "statement invalid period rejected", Group: "statements", Run: statementInvalidPeriod},
	}
}

func statementPeriod() (string, string) {
	now := time.Now()
	return now.AddDate(0, -1, 0).Format("2006-01-02"), now.Format("2006-01-02")
}

func statementJSON(ctx context.Context, env *Env) error {
	id, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}
	if err := postTransaction(ctx, env, id, "deposit", env.Gen.Amount(50)); err != nil {
		return err
	}

	from, to := statementPeriod()
	resp, err := env.Client.Get(ctx, "/api/accounts/"+id+"/statements", map[string]string{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return fmt.Errorf("fetch statement: %w", err)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	return env.Client.ValidateSchema(obj, statementSchema)
}

func statementPDF(ctx context.Context, env *Env) error {
	id, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}

	from, to := statementPeriod()
	resp, err := env.Client.Get(ctx, "/api/accounts/"+id+"/statements/pdf", map[string]string{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return fmt.Errorf("fetch statement pdf: %w", err)
	}

	raw, ok := resp.Data.([]byte)
	if !ok {
		return fmt.Errorf("pdf statement decoded as %T, expected raw bytes", resp.Data)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		return fmt.Errorf("statement body is not a PDF document")
	}
	return nil
}

func statementInvalidPeriod(ctx context.Context, env *Env) error {
	id, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}

	// Period end before start.
	_, err = env.Client.Get(ctx, "/api/accounts/"+id+"/statements", map[string]string{
		"from": "2026-02-01",
		"to":   "2026-01-01",
	})
	if _, err := expectStatus(err, 422); err != nil {
		return fmt.Errorf("inverted period: %w", err)
	}
	return nil
}
