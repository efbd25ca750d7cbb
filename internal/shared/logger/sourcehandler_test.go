package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		minLevel   slog.Level
		log        func(l *slog.Logger)
		wantSource bool
	}{
		{"info below warn threshold", slog.LevelWarn, func(l *slog.Logger) { l.Info("renewal started") }, false},
		{"warn at threshold", slog.LevelWarn, func(l *slog.Logger) { l.Warn("capacity reached") }, true},
		{"error above threshold", slog.LevelWarn, func(l *slog.Logger) { l.Error("finalize failed") }, true},
		{"debug mode shows everything", slog.LevelDebug, func(l *slog.Logger) { l.Info("order created") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			tt.log(slog.New(newSourceHandler(base, tt.minLevel)))

			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	l := slog.New(newSourceHandler(base, slog.LevelError)).With("invoice_id", 42).WithGroup("gateway")

	l.Error("capture rejected", "status", 502)

	out := buf.String()
	assert.Contains(t, out, "invoice_id=42")
	assert.Contains(t, out, "gateway.status=502")
	assert.Contains(t, out, "source=")
}
