package usecases

import (
	"context"
	"fmt"

	"github.com/homechef-inc/mealsub/internal/domain/setting"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// SettingProvider yields the effective platform configuration: rows stored
// in the database win, configured defaults fill the rest. It reads the
// store on every Load so one request or batch sees one consistent value.
type SettingProvider struct {
	settingRepo setting.Repository
	defaults    sharedConfig.PlatformConfig
	logger      logger.Interface
}

func NewSettingProvider(
	settingRepo setting.Repository,
	defaults sharedConfig.PlatformConfig,
	logger logger.Interface,
) *SettingProvider {
	return &SettingProvider{
		settingRepo: settingRepo,
		defaults:    defaults,
		logger:      logger,
	}
}

func (p *SettingProvider) Load(ctx context.Context) (setting.PlatformConfig, error) {
	base, err := setting.NewPlatformConfig(p.defaults)
	if err != nil {
		return setting.PlatformConfig{}, fmt.Errorf("invalid platform defaults: %w", err)
	}

	stored, err := p.settingRepo.GetAll(ctx)
	if err != nil {
		return setting.PlatformConfig{}, fmt.Errorf("failed to load platform settings: %w", err)
	}
	if len(stored) == 0 {
		return base, nil
	}

	cfg, err := base.WithOverrides(stored)
	if err != nil {
		// A bad row must not take the engine down; fall back to defaults.
		p.logger.Errorw("ignoring invalid platform settings", "error", err)
		return base, nil
	}
	return cfg, nil
}
