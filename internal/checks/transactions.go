package checks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bankprobe/pkg/schema"
)

var transactionListSchema = &schema.Schema{
	Type: "object",
	Required: []string{"items", "page", "page_size", "total"},
	Properties: map[string]*schema.Schema{
		"page":      {Type: "integer"},
		"page_size": {Type: "integer"},
		"total":     {Type: "integer"},
		"items": {
			Type: "array",
			Items: &schema.Schema{
				Type: "object",
				Required: []string{"id", "type", "amount", "posted_at"},
				Properties: map[string]*schema.Schema{
					"id":        {Type: "string"},
					"type":      {Type: "string"},
					"amount":    {Type: "number"},
					"memo":      {Type: "string"},
					"posted_at": {Type: "string", Format: "date-time"},
				},
			},
		},
	},
}

func transactionChecks() []Check {
	return []Check{
		{Name: "transaction deposit and withdrawal", Group: "transactions", Run: transactionDepositWithdraw},
		{Name: "transaction list pagination", Group: "transactions", Run: transactionPagination},
		{Name: "transaction overdraft rejected", Group: "transactions", Run: transactionOverdraft},
	}
}

func postTransaction(ctx context.Context, env *Env, accountID, kind string, amount float64) error {
	body := map[string]any{"type": kind, "amount": amount}
	resp, err := env.Client.Post(ctx, "/api/accounts/"+accountID+"/transactions", body)
	if err != nil {
		return fmt.Errorf("post %s: %w", kind, err)
	}
	if resp.Status != 201 {
		return fmt.Errorf("post %s: expected 201, got %d", kind, resp.Status)
	}
	return nil
}

func transactionDepositWithdraw(ctx context.Context, env *Env) error {
	acct := env.Gen.Checking()
	id, _, err := openAccount(ctx, env, acct)
	if err != nil {
		return err
	}

	deposit := env.Gen.Amount(100)
	if err := postTransaction(ctx, env, id, "deposit", deposit); err != nil {
		return err
	}
	if err := postTransaction(ctx, env, id, "withdrawal", deposit/2); err != nil {
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
	expected := acct.OpeningDeposit + deposit - deposit/2
	if diff := balance - expected; diff > 0.001 || diff < -0.001 {
		return fmt.Errorf("balance %.2f, expected %.2f", balance, expected)
	}
	return nil
}

func transactionPagination(ctx context.Context, env *Env) error {
	id, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}

	const posted = 5
	for i := 0; i < posted; i++ {
		if err := postTransaction(ctx, env, id, "deposit", env.Gen.Amount(20)); err != nil {
			return err
		}
	}

	pageSize := 2
	resp, err := env.Client.Get(ctx, "/api/accounts/"+id+"/transactions", map[string]string{
		"page":      "1",
		"page_size": strconv.Itoa(pageSize),
	})
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	if err := env.Client.ValidateSchema(obj, transactionListSchema); err != nil {
		return err
	}

	items, _ := obj["items"].([]any)
	if len(items) > pageSize {
		return fmt.Errorf("page holds %d items, page_size is %d", len(items), pageSize)
	}
	total, err := numberField(obj, "total")
	if err != nil {
		return err
	}
	if int(total) < posted {
		return fmt.Errorf("total %d smaller than posted count %d", int(total), posted)
	}
	return nil
}

func transactionOverdraft(ctx context.Context, env *Env) error {
	acct := env.Gen.Checking()
	id, _, err := openAccount(ctx, env, acct)
	if err != nil {
		return err
	}

	body := map[string]any{"type": "withdrawal", "amount": acct.OpeningDeposit + 1000}
	_, err = env.Client.Post(ctx, "/api/accounts/"+id+"/transactions", body)
	if _, err := expectStatus(err, 422); err != nil {
		return fmt.Errorf("overdraft: %w", err)
	}

	// Balance must be untouched after the rejected withdrawal.
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
	if diff := balance - acct.OpeningDeposit; diff > 0.001 || diff < -0.001 {
		return fmt.Errorf("balance changed to %.2f after rejected overdraft", balance)
	}
	return nil
}
