package checks

import (
	"context"
	"fmt"

	"github.com/bankprobe/pkg/schema"
)

var transferSchema = &schema.Schema{
	Type: "object",
	Required: []string{"id", "from_account_id", "to_account_id", "amount", "status", "created_at"},
	Properties: map[string]*schema.Schema{
		"id":              {Type: "string"},
		"from_account_id": {Type: "string"},
		"to_account_id":   {Type: "string"},
		"amount":          {Type: "number"},
		"memo":            {Type: "string"},
		"status":          {Type: "string"},
		"created_at":      {Type: "string", Format: "date-time"},
	},
}

func transferChecks() []Check {
	return []Check{
		{Name: "transfer between accounts", Group: "transfers", Run: transferBetweenAccounts},
		{Name: "transfer insufficient funds rejected", Group: "transfers", Run: transferInsufficientFunds},
		{Name: "transfer non-positive amount rejected", Group: "transfers", Run: transferInvalidAmount},
	}
}

func transferBetweenAccounts(ctx context.Context, env *Env) error {
	fromAcct := env.Gen.Checking()
	fromID, _, err := openAccount(ctx, env, fromAcct)
	if err != nil {
		return err
	}
	toID, _, err := openAccount(ctx, env, env.Gen.Savings())
	if err != nil {
		return err
	}

	xfer := env.Gen.Transfer(fromID, toID)
	resp, err := env.Client.Post(ctx, "/api/transfers", xfer)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	if resp.Status != 201 {
		return fmt.Errorf("create transfer: expected 201, got %d", resp.Status)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	if err := env.Client.ValidateSchema(obj, transferSchema); err != nil {
		return err
	}

	// The source account balance must drop by the transferred amount.
	acctResp, err := env.Client.Get(ctx, "/api/accounts/"+fromID, nil)
	if err != nil {
		return fmt.Errorf("fetch source account: %w", err)
	}
	acctObj, err := objectData(acctResp)
	if err != nil {
		return err
	}
	balance, err := numberField(acctObj, "balance")
	if err != nil {
		return err
	}
	expected := fromAcct.OpeningDeposit - xfer.Amount
	if diff := balance - expected; diff > 0.001 || diff < -0.001 {
		return fmt.Errorf("source balance %.2f, expected %.2f", balance, expected)
	}
	return nil
}

func transferInsufficientFunds(ctx context.Context, env *Env) error {
	fromAcct := env.Gen.Checking()
	fromID, _, err := openAccount(ctx, env, fromAcct)
	if err != nil {
		return err
	}
	toID, _, err := openAccount(ctx, env, env.Gen.Savings())
	if err != nil {
		return err
	}

	xfer := env.Gen.Transfer(fromID, toID)
	xfer.Amount = fromAcct.OpeningDeposit + 10_000
	_, err = env.Client.Post(ctx, "/api/transfers", xfer)
	if _, err := expectStatus(err, 422); err != nil {
		return fmt.Errorf("insufficient funds: %w", err)
	}
	return nil
}

func transferInvalidAmount(ctx context.Context, env *Env) error {
	fromID, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}
	toID, _, err := openAccount(ctx, env, env.Gen.Savings())
	if err != nil {
		return err
	}

	xfer := env.Gen.Transfer(fromID, toID)
	xfer.Amount = -5
	_, err = env.Client.Post(ctx, "/api/transfers", xfer)
	if _, err := expectStatus(err, 422); err != nil {
		return fmt.Errorf("negative amount: %w", err)
	}
	return nil
}
