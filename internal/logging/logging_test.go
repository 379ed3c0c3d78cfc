package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true},
		{"WARN", false, true},
		{"error", false, false},
		{"", false, true},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Options{Level: tt.level, Output: &buf})
			log.Debug("debug line")
			log.Warn("warn line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "warn line"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v:\n%s", got, tt.wantWarn, out)
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: "info", JSON: true, Output: &buf}).Named("rewards").Info("session recorded", "coins", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, buf.String())
	}
	if line["@message"] != "session recorded" || line["@module"] != "kidquest.rewards" {
		t.Errorf("line = %v", line)
	}
	if line["coins"] != float64(3) {
		t.Errorf("coins = %v", line["coins"])
	}
}
