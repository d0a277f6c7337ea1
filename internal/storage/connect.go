package storage

import (
	"context"

	"github.com/textsafe/textsafe/pkg/retry"
	"go.uber.org/zap"
)

// Connect establishes the Postgres connection under the bounded retry
// policy. It blocks until a connection is verified or the attempt budget
// is exhausted; the terminal error is returned for the caller to decide
// between exiting and running degraded.
func Connect(ctx context.Context, config DatabaseConfig, policy retry.Policy, logger *zap.Logger) (*PostgresStorage, error) {
	var store *PostgresStorage
	err := policy.Do(ctx, "database connect", func(ctx context.Context) error {
		s, err := NewPostgresStorage(config)
		if err != nil {
			return err
		}
		store = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("dbname", config.DBName))
	return store, nil
}
