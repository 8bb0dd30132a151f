package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	out, err := Bars(420, 220, []float64{5, 8}, []float64{3, 4}, []string{"2026-06-01", "2026-06-02"}, BarOpts{
		Title:        "Client acquisition",
		Description:  "New versus returning clients",
		SeriesALabel: "New",
		SeriesBLabel: "Returning",
	})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("expected svg output, got %s", out)
	}
	if !strings.Contains(out, "<rect") {
		t.Fatalf("expected rect bars in svg")
	}
	if !strings.Contains(out, "Returning") {
		t.Fatalf("expected legend label")
	}
}

func TestBarsSingleSeries(t *testing.T) {
	out, err := Bars(420, 220, []float64{2, 0, 7}, nil, []string{"Mon", "Tue", "Wed"}, BarOpts{SeriesALabel: "New"})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	if strings.Contains(out, "Series B") {
		t.Fatalf("unexpected second-series legend: %s", out)
	}
}

func TestBarsRejectsEmptyLabels(t *testing.T) {
	if _, err := Bars(420, 220, []float64{1}, nil, nil, BarOpts{}); err == nil {
		t.Fatal("expected error for missing labels")
	}
}
