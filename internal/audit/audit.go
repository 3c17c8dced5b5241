// Package audit keeps a durable JSONL trail of the scores the service returned.
package audit

import (
	"io"
	"log/slog"

	"supplyscore/internal/model"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one scoring run.
type Entry struct {
	// Operation is the HTTP operation or CLI command that produced the scores.
	Operation string
	// Trigger is set when the run fitted a model: manual, cold_start or recovery.
	Trigger string
	Scores  []model.SupplierScore
}

// Recorder receives audit entries.
type Recorder interface {
	Append(e Entry)
	Close() error
}

// JSONLog writes entries to a rotating, compressed file.
// Each line holds "time", "operation", optionally "trigger", and "scores".
type JSONLog struct {
	out    io.WriteCloser
	logger *slog.Logger
}

// NewJSONLog creates a log writing to file. maxSize is in megabytes,
// maxBackups is the number of rotated files to keep.
func NewJSONLog(file string, maxSize, maxBackups int) *JSONLog {
	return NewJSONLogWith(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	})
}

// NewJSONLogWith creates a log writing to out.
func NewJSONLogWith(out io.WriteCloser) *JSONLog {
	return &JSONLog{
		out:    out,
		logger: slog.New(newJSONLineHandler(out)),
	}
}

// Append writes e as one line. Safe for concurrent use.
func (l *JSONLog) Append(e Entry) {
	args := []any{"operation", e.Operation}
	if e.Trigger != "" {
		args = append(args, "trigger", e.Trigger)
	}
	scores := e.Scores
	if scores == nil {
		scores = []model.SupplierScore{}
	}
	args = append(args, "scores", scores)
	l.logger.Info("", args...)
}

// Close flushes and closes the underlying file.
func (l *JSONLog) Close() error {
	return l.out.Close()
}
