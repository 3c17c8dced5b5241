package history

import (
	"time"

	"supplyscore/internal/utils"
)

// Report describes one successful training run.
type Report struct {
	// TrainedAt is the time the model was fitted.
	TrainedAt time.Time `json:"trainedAt"`
	// Trigger is why the run happened: manual, cold_start or recovery.
	Trigger string `json:"trigger"`
	// Suppliers is the number of feature vectors the model was fitted on.
	Suppliers int `json:"suppliers"`
	// R2 and MSE are the in-sample fit metrics.
	R2  float64 `json:"r2"`
	MSE float64 `json:"mse"`
}

// Trainings keeps the most recent training reports in memory.
// Older reports are evicted once the configured length is reached.
// The history is lost on restart; the model artifact itself is not.
//
// Example:
//
//	h := history.NewTrainings(20)
//	h.Record(history.Report{Trigger: "manual", Suppliers: 12})
//	reports := h.List()
type Trainings struct {
	reports *utils.RingBuffer[Report]
}

// Record appends a report. Safe for concurrent use.
func (h *Trainings) Record(r Report) {
	h.reports.Push(r)
}

// List returns the stored reports from the newest to the oldest.
func (h *Trainings) List() []Report {
	reports := h.reports.ToSlice()
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	return reports
}

// Latest returns the newest report and false when nothing was recorded yet.
// It is a test seam; the service only appends and the API lists.
func (h *Trainings) Latest() (Report, bool) {
	return h.reports.Last()
}

// NewTrainings creates a history keeping at most length reports.
// Non-positive lengths fall back to a single report.
func NewTrainings(length int) *Trainings {
	if length <= 0 {
		length = 1
	}
	return &Trainings{reports: utils.NewRingBuffer[Report](length)}
}
