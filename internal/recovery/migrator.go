package recovery

import (
	"context"

	"github.com/rs/zerolog"
)

// Migrator applies a single migration script during a migrated restore.
// Steps are applied in plan order and the first error stops the run.
type Migrator interface {
	Apply(ctx context.Context, step string) error
}

// SimulatedMigrator logs each step without executing anything. Staged
// restores and real script execution are not implemented yet.
type SimulatedMigrator struct {
	logger zerolog.Logger
}

// NewSimulatedMigrator creates a migrator that only records what it would apply
func NewSimulatedMigrator(logger zerolog.Logger) *SimulatedMigrator {
	return &SimulatedMigrator{
		logger: logger.With().Str("component", "simulated_migrator").Logger(),
	}
}

func (m *SimulatedMigrator) Apply(_ context.Context, step string) error {
	m.logger.Info().Str("step", step).Msg("Simulating migration step")
	return nil
}
