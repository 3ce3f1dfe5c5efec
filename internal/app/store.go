package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/catalog/internal/store"
	"github.com/Skotchmaster/catalog/internal/store/esstore"
	"github.com/Skotchmaster/catalog/internal/store/memstore"
	"github.com/Skotchmaster/catalog/internal/store/sqlstore"
	"github.com/Skotchmaster/catalog/pkg/config"
	pkgdb "github.com/Skotchmaster/catalog/pkg/db"
	"github.com/Skotchmaster/catalog/pkg/es"
	"github.com/Skotchmaster/catalog/pkg/mykafka"
)

func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := pkgdb.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		repo, err := sqlstore.New(db)
		if err != nil {
			if sqlDB, derr := db.DB(); derr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		return repo, nil

	case config.DriverElasticsearch:
		client, err := es.NewClient(ctx, es.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("es client: %w", err)
		}
		repo, err := esstore.New(ctx, client, cfg.ESIndexPrefix)
		if err != nil {
			return nil, fmt.Errorf("es indices: %w", err)
		}
		return repo, nil

	case config.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// OpenEvents returns a Kafka producer when brokers are configured and a no-op
// publisher otherwise.
func OpenEvents(cfg config.Config, l *slog.Logger) (mykafka.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		l.Info("events_disabled", "reason", "KAFKA_BROKERS is empty")
		return mykafka.Nop{}, nil
	}
	p, err := mykafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("events_enabled", "brokers", cfg.KafkaBrokers)
	return p, nil
}
