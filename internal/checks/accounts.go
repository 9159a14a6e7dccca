package checks

import (
	"context"
	"fmt"
	"math"

	"github.com/bankprobe/internal/fixtures"
	"github.com/bankprobe/pkg/schema"
)

var accountSchema = &schema.Schema{
	Type: "object",
	Required: []string{"id", "member_id", "type", "balance", "opened_at"},
	Properties: map[string]*schema.Schema{
		"id":        {Type: "string"},
		"member_id": {Type: "string"},
		"type":      {Type: "string"},
		"nickname":  {Type: "string"},
		"balance":   {Type: "number"},
		"opened_at": {Type: "string", Format: "date-time"},
	},
}

func accountChecks() []Check {
	return []Check{
		{Name: "account open checking", Group: "accounts", Run: accountOpenChecking},
		{Name: "account open savings", Group: "accounts", Run: accountOpenSavings},
		{Name: "account opening deposit reflected in balance", Group: "accounts", Run: accountOpeningDeposit},
		{Name: "account invalid type rejected", Group: "accounts", Run: accountInvalidType},
	}
}

// openAccount creates a member and opens an account for it.
func openAccount(ctx context.Context, env *Env, acct fixtures.Account) (string, map[string]any, error) {
	memberID, _, err := createMember(ctx, env)
	if err != nil {
		return "", nil, err
	}

	resp, err := env.Client.Post(ctx, "/api/members/"+memberID+"/accounts", acct)
	if err != nil {
		return "", nil, fmt.Errorf("open account: %w", err)
	}
	if resp.Status != 201 {
		return "", nil, fmt.Errorf("open account: expected 201, got %d", resp.Status)
	}
	obj, err := objectData(resp)
	if err != nil {
		return "", nil, err
	}
	if err := env.Client.ValidateSchema(obj, accountSchema); err != nil {
		return "", nil, err
	}
	id, err := stringField(obj, "id")
	if err != nil {
		return "", nil, err
	}
	return id, obj, nil
}

func accountOpenChecking(ctx context.Context, env *Env) error {
	_, obj, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}
	if obj["type"] != "checking" {
		return fmt.Errorf("expected type checking, got %v", obj["type"])
	}
	return nil
}

func accountOpenSavings(ctx context.Context, env *Env) error {
	_, obj, err := openAccount(ctx, env, env.Gen.Savings())
	if err != nil {
		return err
	}
	if obj["type"] != "savings" {
		return fmt.Errorf("expected type savings, got %v", obj["type"])
	}
	return nil
}

func accountOpeningDeposit(ctx context.Context, env *Env) error {
	acct := env.Gen.Checking()
	id, _, err := openAccount(ctx, env, acct)
	if err != nil {
		return err
	}

	resp, err := env.Client.Get(ctx, "/api/accounts/"+id, nil)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	balance, err := numberField(obj, "balance")
	if err != nil {
		return err
	}
	if math.Abs(balance-acct.OpeningDeposit) > 0.001 {
		return fmt.Errorf("balance %.2f does not match opening deposit %.2f", balance, acct.OpeningDeposit)
	}
	return nil
}

func accountInvalidType(ctx context.Context, env *Env) error {
	memberID, _, err := createMember(ctx, env)
	if err != nil {
		return err
	}

	bad := map[string]any{"type": "offshore", "opening_deposit": 100}
	_, err = env.Client.Post(ctx, "/api/members/"+memberID+"/accounts", bad)
	if _, err := expectStatus(err, 422); err != nil {
		return fmt.Errorf("invalid account type: %w", err)
	}
	return nil
}
