package checks

import (
	"context"
	"fmt"

	"github.com/bankprobe/pkg/schema"
)

// memberSchema is the expected shape of a member resource.
var memberSchema = &schema.Schema{
	Type: "object",
	Required: []string{"id", "external_id", "first_name", "last_name", "email", "created_at"},
	Properties: map[string]*schema.Schema{
		"id":          {Type: "string"},
		"external_id": {Type: "string", Format: "uuid"},
		"first_name":  {Type: "string"},
		"last_name":   {Type: "string"},
		"email":       {Type: "string", Format: "email"},
		"phone":       {Type: "string"},
		"birth_date":  {Type: "string", Format: "date"},
		"created_at":  {Type: "string", Format: "date-time"},
	},
}

func memberChecks() []Check {
	return []Check{
		{Name: "member create and fetch", Group: "members", Run: memberCreateFetch},
		{Name: "member update contact details", Group: "members", Run: memberUpdateContact},
		{Name: "member duplicate email rejected", Group: "members", Run: memberDuplicateEmail},
		{Name: "member not found", Group: "members", Run: memberNotFound},
	}
}

// createMember posts a fixture member and returns its server-side id.
func createMember(ctx context.Context, env *Env) (string, map[string]any, error) {
	resp, err := env.Client.Post(ctx, "/api/members", env.Gen.Member())
	if err != nil {
		return "", nil, fmt.Errorf("create member: %w", err)
	}
	if resp.Status != 201 {
		return "", nil, fmt.Errorf("create member: expected 201, got %d", resp.Status)
	}
	obj, err := objectData(resp)
	if err != nil {
		return "", nil, err
	}
	if err := env.Client.ValidateSchema(obj, memberSchema); err != nil {
		return "", nil, err
	}
	id, err := stringField(obj, "id")
	if err != nil {
		return "", nil, err
	}
	return id, obj, nil
}

func memberCreateFetch(ctx context.Context, env *Env) error {
	id, created, err := createMember(ctx, env)
	if err != nil {
		return err
	}

	resp, err := env.Client.Get(ctx, "/api/members/"+id, nil)
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	if err := env.Client.ValidateSchema(obj, memberSchema); err != nil {
		return err
	}
	if obj["email"] != created["email"] {
		return fmt.Errorf("fetched email %v does not match created %v", obj["email"], created["email"])
	}
	return nil
}

func memberUpdateContact(ctx context.Context, env *Env) error {
	id, _, err := createMember(ctx, env)
	if err != nil {
		return err
	}

	update := map[string]any{"phone": "+15550001111"}
	resp, err := env.Client.Patch(ctx, "/api/members/"+id, update)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	obj, err := objectData(resp)
	if err != nil {
		return err
	}
	if obj["phone"] != update["phone"] {
		return fmt.Errorf("phone not updated, got %v", obj["phone"])
	}
	return nil
}

func memberDuplicateEmail(ctx context.Context, env *Env) error {
	member := env.Gen.Member()
	if _, err := env.Client.Post(ctx, "/api/members", member); err != nil {
		return fmt.Errorf("create member: %w", err)
	}

	_, err := env.Client.Post(ctx, "/api/members", member)
	apiErr, err := expectStatus(err, 409)
	if err != nil {
		return fmt.Errorf("duplicate email: %w", err)
	}
	if obj, ok := apiErr.Data.(map[string]any); ok {
		if _, hasMsg := obj["error"]; !hasMsg {
			return fmt.Errorf("conflict body missing error field")
		}
	}
	return nil
}

func memberNotFound(ctx context.Context, env *Env) error {
	_, err := env.Client.Get(ctx, "/api/members/00000000-0000-0000-0000-000000000000", nil)
	if _, err := expectStatus(err, 404); err != nil {
		return fmt.Errorf("missing member: %w", err)
	}
	return nil
}
