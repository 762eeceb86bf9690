package ports

import "context"

// Authorization is one deployer entry as stored by the registry.
type Authorization struct {
	Identity   string
	Authorized bool
}

// Repository owns persistence of the deployer authorization set.
type Repository interface {
	GetAuthorization(ctx context.Context, identity string) (bool, error)
	PutAuthorization(ctx context.Context, identity string, authorized bool) error
	ListAuthorized(ctx context.Context) ([]Authorization, error)
}
