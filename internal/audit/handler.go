package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// TimeFormat is the layout of the "time" field of every audit line.
const TimeFormat = "2006-01-02 15:04:05"

// jsonLineHandler is a slog handler that writes one flat JSON object per record.
// The level and message are omitted; attributes are written at the top level
// next to the "time" field.
type jsonLineHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

// newJSONLineHandler creates a handler writing JSONL to out.
func newJSONLineHandler(out io.Writer) *jsonLineHandler {
	return &jsonLineHandler{mu: &sync.Mutex{}, out: out}
}

// Handle serializes the record and its attributes as a single line.
func (h *jsonLineHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs()+1)
	for _, a := range h.attrs {
		addAttr(fields, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, a)
		return true
	})
	fields["time"] = r.Time.Format(TimeFormat)

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(append(data, '\n'))
	return err
}

func addAttr(fields map[string]any, a slog.Attr) {
	if a.Key != "" && a.Value.Any() != nil {
		fields[a.Key] = a.Value.Resolve().Any()
	}
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *jsonLineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &jsonLineHandler{mu: h.mu, out: h.out, attrs: merged}
}

// WithGroup is a no-op: audit lines are flat.
func (h *jsonLineHandler) WithGroup(string) slog.Handler {
	return h
}

// Enabled accepts every level.
func (h *jsonLineHandler) Enabled(context.Context, slog.Level) bool {
	return true
}
