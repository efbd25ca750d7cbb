package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type UpdateSettingsCommand struct {
	Values map[string]string
}

// UpdateSettingsUseCase stores platform setting overrides. The whole batch
// is validated against the current configuration before anything is written.
type UpdateSettingsUseCase struct {
	settingRepo setting.Repository
	provider    setting.PlatformConfigProvider
	logger      logger.Interface
}

func NewUpdateSettingsUseCase(
	settingRepo setting.Repository,
	provider setting.PlatformConfigProvider,
	logger logger.Interface,
) *UpdateSettingsUseCase {
	return &UpdateSettingsUseCase{
		settingRepo: settingRepo,
		provider:    provider,
		logger:      logger,
	}
}

func (uc *UpdateSettingsUseCase) Execute(ctx context.Context, cmd UpdateSettingsCommand) (setting.PlatformConfig, error) {
	if len(cmd.Values) == 0 {
		return setting.PlatformConfig{}, errors.NewValidationError("no settings given")
	}

	keys := make([]string, 0, len(cmd.Values))
	for k := range cmd.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]*setting.Setting, 0, len(keys))
	for _, k := range keys {
		s, err := setting.NewSetting(k, cmd.Values[k])
		if err != nil {
			return setting.PlatformConfig{}, errors.NewValidationError(err.Error())
		}
		rows = append(rows, s)
	}

	current, err := uc.provider.Load(ctx)
	if err != nil {
		return setting.PlatformConfig{}, err
	}
	if _, err := current.WithOverrides(rows); err != nil {
		return setting.PlatformConfig{}, errors.NewValidationError(err.Error())
	}

	for _, s := range rows {
		if err := uc.settingRepo.Upsert(ctx, s); err != nil {
			return setting.PlatformConfig{}, fmt.Errorf("failed to store setting %s: %w", s.Key(), err)
		}
	}

	uc.logger.Infow("platform settings updated", "keys", keys)
	return uc.provider.Load(ctx)
}
