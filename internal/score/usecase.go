package score

import (
	"context"

	"supplyscore/internal/audit"
	"supplyscore/internal/history"
	"supplyscore/internal/model"
	"supplyscore/internal/order"
	"supplyscore/internal/publish"
)

// Operations exposed by the service.
const (
	OperationTrainAndScore = "train-and-score"
	OperationPredictScore  = "predict-score"
)

// Reasons a model gets fitted.
const (
	TriggerManual    = "manual"
	TriggerColdStart = "cold_start"
	TriggerRecovery  = "recovery"
)

// Fetcher returns the current batch of order records from upstream.
type Fetcher interface {
	Fetch(ctx context.Context) ([]order.Record, error)
}

// Scorer is the request-facing side of Service.
type Scorer interface {
	TrainAndScore(ctx context.Context) ([]model.SupplierScore, error)
	PredictScore(ctx context.Context) ([]model.SupplierScore, error)
}

// TrainingHistory records successful fits.
type TrainingHistory interface {
	Record(r history.Report)
}

var (
	_ Fetcher           = (*order.Provider)(nil)
	_ TrainingHistory   = (*history.Trainings)(nil)
	_ audit.Recorder    = (*audit.JSONLog)(nil)
	_ publish.Publisher = (*publish.KafkaPublisher)(nil)
)
