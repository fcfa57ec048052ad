package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNiceStep(t *testing.T) {
	tests := []struct {
		rough, want float64
	}{
		{0, 1},
		{0.7, 1},
		{1.5, 2},
		{3, 5},
		{7, 10},
		{1200, 2000},
	}
	for _, tt := range tests {
		if got := niceStep(tt.rough); got != tt.want {
			t.Errorf("niceStep(%v) = %v, want %v", tt.rough, got, tt.want)
		}
	}
}

func TestBalanceChartFitsWidth(t *testing.T) {
	values := make([]float64, 120)
	labels := make([]string, len(values))
	for i := range values {
		values[i] = float64(len(values)-i) * 100
		labels[i] = "x"
	}
	labels[0], labels[len(labels)-1] = "Jan 2026", "Dec 2035"

	chart := BalanceChart(values, labels, lipgloss.Color("#3AA99F"), 60, 8)
	lines := strings.Split(chart, "\n")
	if len(lines) != 8+2 {
		t.Fatalf("chart has %d lines, want 10", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width = %d, want <= 60", i, w)
		}
	}
	if !strings.Contains(lines[len(lines)-1], "Dec 2035") {
		t.Errorf("footer %q missing last label", lines[len(lines)-1])
	}
}

func TestBalanceChartFallsBackToSparkline(t *testing.T) {
	got := BalanceChart([]float64{3, 2, 1}, nil, lipgloss.Color("2"), 10, 2)
	if lipgloss.Height(got) != 1 {
		t.Fatalf("narrow chart height = %d, want 1", lipgloss.Height(got))
	}
}
