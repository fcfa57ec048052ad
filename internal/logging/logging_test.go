package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbose, debug bool
		want           logrus.Level
	}{
		{false, false, logrus.WarnLevel},
		{true, false, logrus.InfoLevel},
		{false, true, logrus.DebugLevel},
		{true, true, logrus.DebugLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.verbose, tt.debug); got != tt.want {
			t.Errorf("Level(%v, %v) = %v, want %v", tt.verbose, tt.debug, got, tt.want)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logrus.WarnLevel)
	Component(logger, "store").Info("hidden")
	Component(logger, "store").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=store") {
		t.Fatalf("output = %q, want warn line with component", out)
	}
}
