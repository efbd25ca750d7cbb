package setting

import (
	"context"
)

type Repository interface {
	GetAll(ctx context.Context) ([]*Setting, error)
	Upsert(ctx context.Context, s *Setting) error
}

// PlatformConfigProvider yields the effective platform settings.
type PlatformConfigProvider interface {
	Load(ctx context.Context) (PlatformConfig, error)
}
