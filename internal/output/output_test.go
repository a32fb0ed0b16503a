package output

import (
	"strings"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		1234567:   "1,234,567",
		-50000:    "-50,000",
		123456789: "123,456,789",
	}
	for n, want := range cases {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := FormatCost(1.7675); got != "$1.77" {
		t.Errorf("FormatCost(1.7675) = %q", got)
	}
	if got := FormatCost(0); got != "$0.00" {
		t.Errorf("FormatCost(0) = %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[int64]string{
		500:       "500ms",
		1500:      "2s",
		90_000:    "2m",
		3_500_000: "58m",
		7_200_000: "2h",
	}
	for ms, want := range cases {
		if got := FormatTime(ms); got != want {
			t.Errorf("FormatTime(%d) = %q, want %q", ms, got, want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	if got := FormatPercentage(12.34); got != "+12.3%" {
		t.Errorf("FormatPercentage(12.34) = %q", got)
	}
	if got := FormatPercentage(-5); got != "-5.0%" {
		t.Errorf("FormatPercentage(-5) = %q", got)
	}
}

func TestTableRender(t *testing.T) {
	SetNoColor(true)

	tbl := NewTable("Model", "Tokens").AlignRight(1)
	tbl.AddRow("glm-4.6", "1,000")
	tbl.AddRow("gpt-4o", "50")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Model") {
		t.Errorf("header line = %q", lines[0])
	}
	// Numeric column is right-aligned to its width.
	if !strings.HasSuffix(lines[2], "1,000") {
		t.Errorf("row 1 = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "   50") {
		t.Errorf("row 2 not right-aligned: %q", lines[3])
	}
}
