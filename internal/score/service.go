// Package score orchestrates fetching, training, persisting and predicting supplier scores.
package score

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"supplyscore/internal/audit"
	"supplyscore/internal/feature"
	"supplyscore/internal/history"
	"supplyscore/internal/metrics"
	"supplyscore/internal/model"
	"supplyscore/internal/publish"
	"supplyscore/internal/store"
)

// ModelStatus is the state of the persisted model as seen by one Load.
type ModelStatus int

const (
	ModelPresent ModelStatus = iota
	ModelAbsent
	ModelCorrupt
)

// String returns the lowercase status name used in logs.
func (s ModelStatus) String() string {
	switch s {
	case ModelPresent:
		return "present"
	case ModelAbsent:
		return "absent"
	default:
		return "corrupt"
	}
}

// statusOf classifies the error returned by ModelStore.Load.
// Any failure other than ErrNotFound makes the artifact unusable.
func statusOf(err error) ModelStatus {
	switch {
	case err == nil:
		return ModelPresent
	case errors.Is(err, store.ErrNotFound):
		return ModelAbsent
	default:
		return ModelCorrupt
	}
}

// Service computes supplier reliability scores.
//
// TrainAndScore always fits a new model and replaces the persisted one.
// PredictScore reuses the persisted model and falls back to a full training
// run when the model is absent or unusable.
//
// Service holds no locks: overlapping calls each fetch their own snapshot and
// the last successful save wins. Stores replace the artifact atomically, so a
// concurrent Load never observes a partial write.
type Service struct {
	fetcher   Fetcher
	store     store.ModelStore
	metrics   *metrics.Registry
	history   TrainingHistory
	audit     audit.Recorder
	publisher publish.Publisher
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithMetrics records run outcomes, trainings and fallbacks in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHistory records a report of every successful fit in h.
func WithHistory(h TrainingHistory) Option {
	return func(s *Service) { s.history = h }
}

// WithAudit appends every successful run to r.
func WithAudit(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithPublisher publishes the scores of every successful run through p.
// Publication errors are logged and never fail the run.
func WithPublisher(p publish.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a Service reading orders from fetcher and persisting the model in st.
func NewService(fetcher Fetcher, st store.ModelStore, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrainAndScore fetches the orders, fits a model on heuristic labels, persists it
// and returns the model's scores for every supplier, ordered by supplier id.
func (s *Service) TrainAndScore(ctx context.Context) ([]model.SupplierScore, error) {
	started := time.Now()
	scores, err := s.train(ctx, TriggerManual)
	s.metrics.ObserveRun(OperationTrainAndScore, started, err)
	if err != nil {
		return nil, err
	}

	s.report(ctx, OperationTrainAndScore, TriggerManual, scores)
	return scores, nil
}

// PredictScore scores every supplier with the persisted model. When no usable model
// exists it trains one first, with the same result TrainAndScore would return.
func (s *Service) PredictScore(ctx context.Context) ([]model.SupplierScore, error) {
	started := time.Now()
	scores, trigger, err := s.predict(ctx)
	s.metrics.ObserveRun(OperationPredictScore, started, err)
	if err != nil {
		return nil, err
	}

	s.report(ctx, OperationPredictScore, trigger, scores)
	return scores, nil
}

// predict returns the scores and the training trigger, empty when no training happened.
func (s *Service) predict(ctx context.Context) ([]model.SupplierScore, string, error) {
	m, err := s.store.Load(ctx)

	switch statusOf(err) {
	case ModelAbsent:
		slog.Info("no persisted model, training")
		s.metrics.ObserveFallback(TriggerColdStart)
		scores, err := s.train(ctx, TriggerColdStart)
		return scores, TriggerColdStart, err

	case ModelCorrupt:
		slog.Warn("persisted model unusable, retraining", "error", err)
		s.metrics.ObserveFallback(TriggerRecovery)
		scores, err := s.train(ctx, TriggerRecovery)
		return scores, TriggerRecovery, err

	default:
		vectors, err := s.features(ctx)
		if err != nil {
			return nil, "", err
		}
		return model.Predict(m, vectors), "", nil
	}
}

func (s *Service) train(ctx context.Context, trigger string) ([]model.SupplierScore, error) {
	vectors, err := s.features(ctx)
	if err != nil {
		return nil, err
	}

	m, err := model.Train(vectors, model.Labels(vectors))
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, m); err != nil {
		return nil, err
	}
	slog.Info("Model saved", "trigger", trigger, "samples", m.Samples)

	s.metrics.ObserveTraining(trigger, m.Metrics.R2, m.Metrics.MSE)
	if s.history != nil {
		s.history.Record(history.Report{
			TrainedAt: m.TrainedAt,
			Trigger:   trigger,
			Suppliers: m.Samples,
			R2:        m.Metrics.R2,
			MSE:       m.Metrics.MSE,
		})
	}

	return model.Predict(m, vectors), nil
}

func (s *Service) features(ctx context.Context) ([]feature.Vector, error) {
	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return feature.Aggregate(records)
}

// report hands a successful run to the audit log and the publisher.
// Neither can fail the run.
func (s *Service) report(ctx context.Context, operation, trigger string, scores []model.SupplierScore) {
	if s.audit != nil {
		s.audit.Append(audit.Entry{Operation: operation, Trigger: trigger, Scores: scores})
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, operation, scores); err != nil {
			slog.Warn("Unable to publish scores", "operation", operation, "error", err)
		}
	}
}
