package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy for a database driver: versioned goose
// scripts for MySQL, AutoMigrate for SQLite.
func NewManager(driver string) *Manager {
	var strategy Strategy
	switch driver {
	case "mysql":
		strategy = NewGooseStrategy("mysql")
	default:
		strategy = NewGormAutoMigrateStrategy()
	}
	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate brings the schema up to date.
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models.All()...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps versioned migrations. AutoMigrate has no history.
func (m *Manager) Down(db *gorm.DB, steps int) error {
	g, ok := m.strategy.(*GooseStrategy)
	if !ok {
		return fmt.Errorf("strategy %s does not support down migrations", m.strategy.GetName())
	}
	return g.MigrateDown(db, steps)
}

func (m *Manager) Status(db *gorm.DB) error {
	g, ok := m.strategy.(*GooseStrategy)
	if !ok {
		m.logger.Infow("schema is managed by auto migration, no version history")
		return nil
	}
	return g.Status(db)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
