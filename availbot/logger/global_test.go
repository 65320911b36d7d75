package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) last(t *testing.T) slog.Record {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		t.Fatal("no log records captured")
	}
	return h.records[len(h.records)-1]
}

func attrValue(r slog.Record, key string) (slog.Value, bool) {
	var out slog.Value
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			out = a.Value
			found = true
			return false
		}
		return true
	})
	return out, found
}

func captureLogs(t *testing.T) *recordingHandler {
	t.Helper()
	prev := slog.Default()
	h := &recordingHandler{}
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return h
}

func TestLogCommand(t *testing.T) {
	h := captureLogs(t)

	LogCommand("poll/status", 42*time.Millisecond, nil)
	r := h.last(t)
	if r.Level != slog.LevelInfo {
		t.Errorf("level = %v, want Info", r.Level)
	}
	if v, ok := attrValue(r, "type"); !ok || v.String() != "cmd" {
		t.Errorf("type attr = %v", v)
	}
	if v, ok := attrValue(r, "name"); !ok || v.String() != "poll/status" {
		t.Errorf("name attr = %v", v)
	}

	LogCommand("poll/manual", time.Second, errors.New("boom"))
	r = h.last(t)
	if r.Level != slog.LevelError {
		t.Errorf("level = %v, want Error", r.Level)
	}
	if _, ok := attrValue(r, "error"); !ok {
		t.Error("error attr missing on failed command")
	}
}

func TestLogSystem(t *testing.T) {
	h := captureLogs(t)

	LogSystem("gateway opened", slog.Int("shards", 1))
	r := h.last(t)
	if r.Level != slog.LevelInfo {
		t.Errorf("level = %v, want Info", r.Level)
	}
	if v, ok := attrValue(r, "type"); !ok || v.String() != "sys" {
		t.Errorf("type attr = %v", v)
	}
	if _, ok := attrValue(r, "shards"); !ok {
		t.Error("caller attr dropped")
	}
}

func TestLogError(t *testing.T) {
	h := captureLogs(t)

	LogError("restore failed", errors.New("db gone"))
	r := h.last(t)
	if r.Level != slog.LevelError {
		t.Errorf("level = %v, want Error", r.Level)
	}
	if v, ok := attrValue(r, "type"); !ok || v.String() != "error" {
		t.Errorf("type attr = %v", v)
	}
}
