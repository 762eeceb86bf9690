package application_test

import (
	"context"
	"errors"
	"testing"

	deployerregistry "inflectiv/contexts/asset-core/deployer-registry"
	domainerrors "inflectiv/contexts/asset-core/deployer-registry/domain/errors"
)

func TestSetAuthorizationOwnerOnly(t *testing.T) {
	module := deployerregistry.NewInMemoryModule("0xAdmin", nil)

	err := module.Service.SetAuthorization(context.Background(), "0xintruder", "0xregistry", true)
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	authorized, err := module.Service.IsAuthorized(context.Background(), "0xregistry")
	if err != nil {
		t.Fatalf("IsAuthorized: %v", err)
	}
	if authorized {
		t.Fatalf("rejected flip must leave entry unauthorized")
	}
}

func TestSetAuthorizationFlipAndRevoke(t *testing.T) {
	module := deployerregistry.NewInMemoryModule("0xAdmin", nil)

	// Owner identity comparison is case-insensitive.
	if err := module.Service.SetAuthorization(context.Background(), "0xadmin", "0xRegistry", true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	authorized, err := module.Service.IsAuthorized(context.Background(), "0xREGISTRY")
	if err != nil || !authorized {
		t.Fatalf("expected authorized, got %v %v", authorized, err)
	}

	if err := module.Service.SetAuthorization(context.Background(), "0xAdmin", "0xregistry", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	authorized, err = module.Service.IsAuthorized(context.Background(), "0xregistry")
	if err != nil || authorized {
		t.Fatalf("expected revoked, got %v %v", authorized, err)
	}
}

func TestListAuthorizedOmitsRevoked(t *testing.T) {
	module := deployerregistry.NewInMemoryModule("0xadmin", nil)
	ctx := context.Background()

	for _, identity := range []string{"0xaaa", "0xbbb", "0xccc"} {
		if err := module.Service.SetAuthorization(ctx, "0xadmin", identity, true); err != nil {
			t.Fatalf("authorize %s: %v", identity, err)
		}
	}
	if err := module.Service.SetAuthorization(ctx, "0xadmin", "0xbbb", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	items, err := module.Service.ListAuthorized(ctx)
	if err != nil {
		t.Fatalf("ListAuthorized: %v", err)
	}
	if len(items) != 2 || items[0].Identity != "0xaaa" || items[1].Identity != "0xccc" {
		t.Fatalf("unexpected authorized set: %+v", items)
	}
}

func TestIsAuthorizedRequiresIdentity(t *testing.T) {
	module := deployerregistry.NewInMemoryModule("0xadmin", nil)

	if _, err := module.Service.IsAuthorized(context.Background(), "   "); !errors.Is(err, domainerrors.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
}
