package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"supplyscore/internal/history"
	"supplyscore/internal/model"
	"supplyscore/internal/order"
	"supplyscore/internal/score"
)

// Trainings lists recent training reports, newest first.
type Trainings interface {
	List() []history.Report
}

// errorResponse is the body of every failed request.
// Missing is only set when required order fields are absent upstream.
type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

// ApiV1Router manages the scoring routes.
type ApiV1Router struct {
	// scorer runs the scoring pipelines.
	scorer score.Scorer
	// trainings is optional; the history route answers with an empty list without it.
	trainings Trainings
	// metrics is optional; /metrics is not registered without it.
	metrics http.Handler
}

// Mux returns a configured *http.ServeMux with registered handlers:
// - POST /train-and-score: fits a new model and scores every supplier
// - POST /predict-score: scores every supplier with the persisted model
// - GET /api/v1/trainings: recent training reports
// - GET /healthz: liveness check
// - GET /metrics: prometheus metrics (if enabled)
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /train-and-score", ar.trainAndScoreHandler)
	mux.HandleFunc("POST /predict-score", ar.predictScoreHandler)
	mux.HandleFunc("GET /api/v1/trainings", ar.trainingsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if ar.metrics != nil {
		mux.Handle("GET /metrics", ar.metrics)
	}

	return mux
}

func (ar *ApiV1Router) trainAndScoreHandler(w http.ResponseWriter, r *http.Request) {
	scores, err := ar.scorer.TrainAndScore(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (ar *ApiV1Router) predictScoreHandler(w http.ResponseWriter, r *http.Request) {
	scores, err := ar.scorer.PredictScore(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (ar *ApiV1Router) trainingsHandler(w http.ResponseWriter, _ *http.Request) {
	reports := []history.Report{}
	if ar.trainings != nil {
		reports = ar.trainings.List()
	}
	writeJSON(w, http.StatusOK, reports)
}

// statusFor maps a pipeline error to an HTTP status.
// Bad upstream data is a client-input failure, everything else is a server failure.
func statusFor(err error) int {
	var missing *order.MissingFieldsError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, order.ErrEmptyData),
		errors.Is(err, order.ErrInvalidRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var missing *order.MissingFieldsError
	if errors.As(err, &missing) {
		body.Missing = missing.Fields
	}

	var training *model.TrainingError
	switch {
	case status == http.StatusBadRequest:
		slog.Warn("Rejected order data", "error", err)
	case errors.As(err, &training):
		slog.Error("Model training failed", "error", err)
	default:
		slog.Error("Request failed", "error", err)
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// NewApiV1Router creates a new API v1 router.
// trainings and metrics may be nil.
func NewApiV1Router(scorer score.Scorer, trainings Trainings, metrics http.Handler) *ApiV1Router {
	return &ApiV1Router{
		scorer:    scorer,
		trainings: trainings,
		metrics:   metrics,
	}
}
