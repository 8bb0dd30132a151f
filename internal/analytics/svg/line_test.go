package svg

import (
	"strings"
	"testing"
)

func TestLineProducesSVG(t *testing.T) {
	out, err := Line(400, 200, []float64{120, 260, 180}, []string{"2026-06-01", "2026-06-02", "2026-06-03"}, LineOpts{
		Title:       "Revenue over time",
		Description: "Daily revenue",
		ShowDots:    true,
	})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("expected svg output, got %s", out)
	}
	if !strings.Contains(out, "<path") {
		t.Fatalf("expected path element in svg")
	}
	if !strings.Contains(out, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestLineEscapesLabels(t *testing.T) {
	out, err := Line(400, 200, []float64{10}, []string{`<script>"x"</script>`}, LineOpts{})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("label not escaped: %s", out)
	}
}

func TestLineRejectsMismatchedLabels(t *testing.T) {
	if _, err := Line(400, 200, []float64{1, 2}, []string{"only-one"}, LineOpts{}); err == nil {
		t.Fatal("expected error for mismatched labels")
	}
}
