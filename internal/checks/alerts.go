package checks

import (
	"context"
	"fmt"

	"github.com/bankprobe/pkg/schema"
)

var alertSchema = &schema.Schema{
	Type: "object",
	Required: []string{"id", "account_id", "type", "threshold", "created_at"},
	Properties: map[string]*schema.Schema{
		"id":         {Type: "string"},
		"account_id": {Type: "string"},
		"type":       {Type: "string"},
		"threshold":  {Type: "number"},
		"created_at": {Type: "string", Format: "date-time"},
	},
}

func alertChecks() []Check {
	return []Check{
		{Name: "alert subscribe list delete", Group: "alerts", Run: alertLifecycle},
		{Name: "alert unknown account rejected", Group: "alerts", Run: alertUnknownAccount},
	}
}

func alertLifecycle(ctx context.Context, env *Env) error {
	accountID, _, err := openAccount(ctx, env, env.Gen.Checking())
	if err != nil {
		return err
	}

	body := map[string]any{"account_id": accountID, "type": "low_balance", "threshold": 50}
	resp, err := env.Client.Post(ctx, "/api/alerts", body)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	if resp.Status != 201 {
		return fmt.Errorf("create alert: expected 201, got %d", resp.Status)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	if err := env.Client.ValidateSchema(obj, alertSchema); err != nil {
		return err
	}
	alertID, err := stringField(obj, "id")
	if err != nil {
		return err
	}

	listResp, err := env.Client.Get(ctx, "/api/alerts", map[string]string{"account_id": accountID})
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	items, ok := listResp.Data.([]any)
	if !ok {
		return fmt.Errorf("alert list decoded as %T, expected array", listResp.Data)
	}
	found := false
	for _, it := range items {
		if m, ok := it.(map[string]any); ok && m["id"] == alertID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("created alert %s missing from list", alertID)
	}

	delResp, err := env.Client.Delete(ctx, "/api/alerts/"+alertID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if delResp.Status != 204 {
		return fmt.Errorf("delete alert: expected 204, got %d", delResp.Status)
	}

	_, err = env.Client.Get(ctx, "/api/alerts/"+alertID, nil)
	if _, err := expectStatus(err, 404); err != nil {
		return fmt.Errorf("deleted alert still present: %w", err)
	}
	return nil
}

func alertUnknownAccount(ctx context.Context, env *Env) error {
	body := map[string]any{
		"account_id": "00000000-0000-0000-0000-000000000000",
		"type":       "low_balance",
		"threshold":  50,
	}
	_, err := env.Client.Post(ctx, "/api/alerts", body)
	if _, err := expectStatus(err, 404); err != nil {
		return fmt.Errorf("unknown account: %w", err)
	}
	return nil
}
