package analysis

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	report, err := Parse(sampleBlob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := Render(report)
	for _, want := range []string{
		"Summary", "Received", "Headers",
		"Quarterly numbers",
		"Alice Example <alice@example.org>",
		"from sender.example.org",
		"1234@example.org",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	if strings.Index(out, "from sender.example.org") > strings.Index(out, "from mx2.example.net") {
		t.Error("expected oldest hop to be listed first")
	}
}

func TestRender_NoHops(t *testing.T) {
	report, err := Parse("X-Custom: one\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := Render(report)
	if strings.Contains(out, "Received") {
		t.Error("expected no Received section")
	}
	if !strings.Contains(out, "(none)") {
		t.Error("expected placeholder for missing summary values")
	}
}
