package factcheck

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/greenaudit/greenaudit/internal/model"
)

func TestParseVerdict(t *testing.T) {
	raw := `{"is_verified": true, "confidence": 0.92,
		"evidence_summary": "Press coverage confirms the program.",
		"source_urls": ["https://example.org/a", "https://example.org/b"]}`

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if !verdict.Verified {
		t.Error("expected verified")
	}
	if verdict.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", verdict.Confidence)
	}
	if len(verdict.Sources) != 2 {
		t.Errorf("len(Sources) = %d, want 2", len(verdict.Sources))
	}
}

func TestParseVerdict_ClampsConfidence(t *testing.T) {
	verdict, err := ParseVerdict(`{"is_verified": false, "confidence": 1.7, "evidence_summary": "x"}`)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if verdict.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want clamped to 1.0", verdict.Confidence)
	}
}

func TestParseVerdict_InvalidJSON(t *testing.T) {
	if _, err := ParseVerdict("no json here"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestVisibleTextSkipsScripts(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><head><script>var x;</script><style>p{}</style></head>` +
			`<body><p>Planted</p><p>trees</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	text := visibleText(doc)
	if text != "Planted trees" {
		t.Errorf("visibleText = %q, want %q", text, "Planted trees")
	}
}

func TestResultLinks(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><body>
			<a href="https://example.org/a">A</a>
			<a href="/relative">skip</a>
			<a href="https://example.org/a">dup</a>
			<a href="http://example.org/b">B</a>
			<a href="https://example.org/c">C</a>
		</body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	links := resultLinks(doc, 2)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0] != "https://example.org/a" || links[1] != "http://example.org/b" {
		t.Errorf("unexpected links: %v", links)
	}
}

func TestSimulated_KeywordHeuristic(t *testing.T) {
	sim := NewSimulated()
	ctx := context.Background()

	verdict, err := sim.VerifyClaim(ctx, model.EnvironmentalClaim{Description: "Reduced emissions by 30%"})
	if err != nil {
		t.Fatalf("VerifyClaim: %v", err)
	}
	if !verdict.Verified || verdict.Confidence != 0.95 {
		t.Errorf("unexpected verdict: %+v", verdict)
	}

	verdict, err = sim.VerifyClaim(ctx, model.EnvironmentalClaim{Description: "Built a community garden"})
	if err != nil {
		t.Fatalf("VerifyClaim: %v", err)
	}
	if verdict.Verified {
		t.Errorf("expected unverified, got %+v", verdict)
	}
	if len(verdict.Sources) == 0 {
		t.Error("expected sources even for unverified claims")
	}
}
