package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestWithOperationFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Level: "info", Console: &buf, SendToAxiom: true}); err != nil {
		t.Fatal(err)
	}
	defer Close()
	if ax != nil {
		t.Fatal("axiom writer created without an api key")
	}

	l := WithOperation("op-1", "split")
	l.Debug().Msg("hidden")
	l.Info().Int("pages", 3).Msg("done")

	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("want one json line, got %q: %v", buf.String(), err)
	}
	for k, want := range map[string]any{
		"service":  serviceName,
		"op_id":    "op-1",
		"workflow": "split",
		"message":  "done",
		"level":    "info",
		"pages":    float64(3),
	} {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestShippedLevels(t *testing.T) {
	tests := []struct {
		min  string
		want []zerolog.Level
	}{
		{"", []zerolog.Level{zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel}},
		{"bogus", []zerolog.Level{zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel}},
		{"warn", []zerolog.Level{zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel}},
		{"debug", []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, shippedLevels(tt.min)); diff != "" {
			t.Errorf("shippedLevels(%q) (-want +got):\n%s", tt.min, diff)
		}
	}
}
