package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"supplyscore/internal/audit"
	"supplyscore/internal/configuration"
	"supplyscore/internal/history"
	"supplyscore/internal/metrics"
	"supplyscore/internal/order"
	"supplyscore/internal/publish"
	"supplyscore/internal/score"
	"supplyscore/internal/store"
)

// application holds the wired components of one process.
type application struct {
	service   *score.Service
	trainings *history.Trainings
	metrics   *metrics.Registry
	closers   []io.Closer
}

func newApplication(ctx context.Context, config *configuration.AppConfig) (*application, error) {
	app := &application{
		trainings: history.NewTrainings(config.History.Length),
		metrics:   metrics.NewRegistry(),
	}

	modelStore, err := newStore(ctx, config.Store)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize model store: %w", err)
	}
	if c, ok := modelStore.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	opts := []score.Option{
		score.WithMetrics(app.metrics),
		score.WithHistory(app.trainings),
	}
	if config.Audit.File != "" {
		log := audit.NewJSONLog(config.Audit.File, config.Audit.Size, config.Audit.Amount)
		app.closers = append(app.closers, log)
		opts = append(opts, score.WithAudit(log))
	}
	if config.Publish.Enabled() {
		publisher := publish.NewKafkaPublisher(config.Publish.Brokers, config.Publish.Topic)
		app.closers = append(app.closers, publisher)
		opts = append(opts, score.WithPublisher(publisher))
	}

	provider := order.NewProvider(config.Provider.URL, config.Provider.Timeout, config.Provider.Token, config.Provider.MaxBody)
	app.service = score.NewService(provider, modelStore, opts...)
	slog.Info("Application initialized", "store", config.Store.Type, "provider", config.Provider.URL)
	return app, nil
}

// Close releases every component in reverse creation order.
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("Unable to close application", "error", err)
		return err
	}
	return nil
}

func newStore(ctx context.Context, config configuration.StoreConfig) (store.ModelStore, error) {
	var backend store.Backend

	switch config.Type {
	case configuration.StoreTypeFile, "":
		return store.NewFileStore(config.Path), nil
	case configuration.StoreTypeMemory:
		return store.NewMemoryStore(), nil
	case configuration.StoreTypeS3:
		s, err := store.NewS3Store(ctx, config.Region, config.Bucket, config.Key)
		if err != nil {
			return nil, err
		}
		return s, nil
	case configuration.StoreTypeSQLite:
		backend = store.SQLiteBackend
	case configuration.StoreTypePostgres:
		backend = store.PostgreSQLBackend
	case configuration.StoreTypeMySQL:
		backend = store.MySQLBackend
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", config.Type)
	}

	s, err := store.NewSQLStore(ctx, backend, config.DSN, config.Table, config.Key)
	if err != nil {
		return nil, err
	}
	return s, nil
}
