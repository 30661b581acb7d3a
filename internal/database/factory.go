package database

import (
	"fmt"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

// NewHistoryStore opens the configured history backend. It returns nil, nil
// when history is disabled.
func NewHistoryStore(cfg *config.Config) (HistoryStore, error) {
	switch cfg.History.Backend {
	case config.HistoryBackendNone, "":
		return nil, nil
	case config.HistoryBackendPostgres:
		utils.GetLogger().WithFields(utils.Fields{
			"host":     cfg.Postgres.Host,
			"database": cfg.Postgres.Database,
		}).Info("Connecting to PostgreSQL history store")
		pg, err := NewPostgresDB(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.HistoryBackendMongoDB:
		utils.GetLogger().WithField("database", cfg.MongoDB.Database).Info("Connecting to MongoDB history store")
		mdb, err := NewMongoDB(&cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return mdb, nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.History.Backend)
	}
}
