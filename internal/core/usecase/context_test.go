package usecase

import (
	"strings"
	"testing"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

func rc(url, text string, start, end int, score float64) domain.RerankedCandidate {
	return domain.RerankedCandidate{
		Chunk: domain.Chunk{
			DocumentURL: url,
			Title:       "t",
			Text:        text,
			CharStart:   start,
			CharEnd:     end,
		},
		Score: score,
	}
}

func TestAssembleMergesOverlappingSpans(t *testing.T) {
	// Two chunks of the same document sharing a 5-rune overlap.
	gc := AssembleContext([]domain.RerankedCandidate{
		rc("u1", "abcdefghij", 0, 10, 0.9),
		rc("u1", "fghijklmno", 5, 15, 0.8),
	}, 0)

	if len(gc.Blocks) != 1 {
		t.Fatalf("expected one merged block, got %d", len(gc.Blocks))
	}
	b := gc.Blocks[0]
	if b.Text != "abcdefghijklmno" {
		t.Fatalf("unexpected merged text %q", b.Text)
	}
	if b.CharStart != 0 || b.CharEnd != 15 {
		t.Fatalf("unexpected span %d..%d", b.CharStart, b.CharEnd)
	}
}

func TestAssembleDisjointSpansGetMarker(t *testing.T) {
	gc := AssembleContext([]domain.RerankedCandidate{
		rc("u1", "start", 0, 5, 0.9),
		rc("u1", "far away", 100, 108, 0.8),
	}, 0)

	if len(gc.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(gc.Blocks))
	}
	if !strings.Contains(gc.Blocks[0].Text, "[...]") {
		t.Fatalf("expected gap marker in %q", gc.Blocks[0].Text)
	}
}

func TestAssembleKeepsRerankOrderAcrossDocuments(t *testing.T) {
	gc := AssembleContext([]domain.RerankedCandidate{
		rc("best", "top chunk", 0, 9, 0.9),
		rc("second", "next chunk", 0, 10, 0.5),
	}, 0)

	if len(gc.Blocks) != 2 {
		t.Fatalf("expected two blocks, got %d", len(gc.Blocks))
	}
	if gc.Blocks[0].DocumentURL != "best" || gc.Blocks[1].DocumentURL != "second" {
		t.Fatalf("unexpected order: %s, %s", gc.Blocks[0].DocumentURL, gc.Blocks[1].DocumentURL)
	}
}

func TestAssembleEnforcesBudget(t *testing.T) {
	gc := AssembleContext([]domain.RerankedCandidate{
		rc("u1", strings.Repeat("a", 50), 0, 50, 0.9),
		rc("u2", strings.Repeat("b", 50), 0, 50, 0.8),
		rc("u3", strings.Repeat("c", 10), 0, 10, 0.7),
	}, 70)

	if len(gc.Blocks) != 2 {
		t.Fatalf("expected two blocks within budget, got %d", len(gc.Blocks))
	}
	if gc.Blocks[0].DocumentURL != "u1" || gc.Blocks[1].DocumentURL != "u3" {
		t.Fatalf("expected u1 and u3 to fit, got %s and %s", gc.Blocks[0].DocumentURL, gc.Blocks[1].DocumentURL)
	}
}

func TestAssembleAlwaysKeepsBestBlockTruncated(t *testing.T) {
	gc := AssembleContext([]domain.RerankedCandidate{
		rc("u1", strings.Repeat("a", 500), 0, 500, 0.9),
	}, 100)

	if len(gc.Blocks) != 1 {
		t.Fatalf("best block must survive the budget, got %d blocks", len(gc.Blocks))
	}
	if n := len([]rune(gc.Blocks[0].Text)); n != 100 {
		t.Fatalf("oversized lone block must be cut to the budget, got %d runes", n)
	}
	if gc.Blocks[0].CharEnd != 100 {
		t.Fatalf("span end must track the truncation, got %d", gc.Blocks[0].CharEnd)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	gc := AssembleContext(nil, 1000)
	if !gc.Empty() {
		t.Fatalf("expected empty context, got %+v", gc)
	}
}
