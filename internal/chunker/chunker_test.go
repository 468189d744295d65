package chunker

import (
	"strings"
	"testing"

	"dealscope/internal/config"
)

func smallProfile() config.ModelProfile {
	return config.ModelProfile{
		ContextWindow:            200,
		TokenSafetyMargin:        20,
		MaxChunkSize:             100,
		ReservedCompletionTokens: 30,
	}
}

func TestEstimateTokens(t *testing.T) {
	// "hello world" = 2 words, 11 chars -> floor(3 + 2.75) = 5
	if got := EstimateTokens("hello world"); got != 5 {
		t.Errorf("EstimateTokens(%q) = %d, want 5", "hello world", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
}

func TestEffectiveBudget(t *testing.T) {
	p := smallProfile()
	// window budget = 200-20-30 = 150, capped by maxChunkSize 100
	if got := EffectiveBudget(p); got != 100 {
		t.Errorf("EffectiveBudget = %d, want 100", got)
	}

	p.MaxChunkSize = 500
	if got := EffectiveBudget(p); got != 150 {
		t.Errorf("EffectiveBudget without cap = %d, want 150", got)
	}

	p.TokenSafetyMargin = 500
	if got := EffectiveBudget(p); got != 1 {
		t.Errorf("EffectiveBudget floor = %d, want 1", got)
	}
}

func TestChunkSmallTextSingleChunk(t *testing.T) {
	text := "a short document"
	chunks := Chunk(text, smallProfile())
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("Chunk(small) = %#v, want the input unchanged", chunks)
	}
}

func TestChunkEmptyText(t *testing.T) {
	if chunks := Chunk("", smallProfile()); chunks != nil {
		t.Fatalf("Chunk(empty) = %#v, want nil", chunks)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Paragraph with a handful of words about revenue and funds.\n\n")
	}
	text := b.String()

	chunks := Chunk(text, smallProfile())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("concatenated chunks do not reproduce the input")
	}

	budget := EffectiveBudget(smallProfile())
	for i, c := range chunks {
		if EstimateTokens(c) > budget {
			t.Errorf("chunk %d exceeds budget: %d > %d", i, EstimateTokens(c), budget)
		}
	}
}

func TestChunkOversizedLineKeptWhole(t *testing.T) {
	// A single line far beyond the budget must survive as one chunk.
	long := strings.Repeat("word ", 400)
	text := "small intro\n\n" + long

	chunks := Chunk(text, smallProfile())
	if strings.Join(chunks, "") != text {
		t.Fatal("concatenated chunks do not reproduce the input")
	}
	found := false
	for _, c := range chunks {
		if strings.Contains(c, long[:100]) && EstimateTokens(c) > EffectiveBudget(smallProfile()) {
			found = true
		}
	}
	if !found {
		t.Error("oversized line was not emitted as its own oversized chunk")
	}
}

func TestChunkBudgetWithFractionalUnitEstimates(t *testing.T) {
	// Each "ab c\n" line estimates to 4 tokens alone, but the estimate
	// truncates fractions, so four joined lines estimate to 17, not 16. The
	// packer must budget the concatenation, not the sum of the parts.
	p := config.ModelProfile{ContextWindow: 1000, MaxChunkSize: 16}
	text := strings.Repeat("ab c\n", 4)

	chunks := Chunk(text, p)
	if strings.Join(chunks, "") != text {
		t.Fatal("concatenated chunks do not reproduce the input")
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the text to split, got %d chunk(s)", len(chunks))
	}
	budget := EffectiveBudget(p)
	for i, c := range chunks {
		if got := EstimateTokens(c); got > budget {
			t.Errorf("splittable chunk %d exceeds budget: %d > %d", i, got, budget)
		}
	}
}

func TestChunkParagraphFallsBackToLines(t *testing.T) {
	// One paragraph made of many lines, no blank lines inside.
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("line of financial details with several words\n")
	}
	text := b.String()

	chunks := Chunk(text, smallProfile())
	if len(chunks) < 2 {
		t.Fatalf("expected line-level split, got %d chunk(s)", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("concatenated chunks do not reproduce the input")
	}
}
