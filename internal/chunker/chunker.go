// Package chunker splits extracted document text into token-bounded pieces
// sized for a single LLM call.
package chunker

import (
	"strings"

	"dealscope/internal/config"
)

// EstimateTokens approximates the token count of a text span as
// floor(words*1.5 + chars/4). It is a fast heuristic, not a tokenizer; the
// per-model safety margin absorbs the estimation error.
func EstimateTokens(s string) int {
	words := len(strings.Fields(s))
	return int(float64(words)*1.5 + float64(len(s))/4.0)
}

// EffectiveBudget is the token budget one chunk may consume:
// min(maxChunkSize, contextWindow - safetyMargin - reservedCompletionTokens).
func EffectiveBudget(p config.ModelProfile) int {
	budget := p.ContextWindow - p.TokenSafetyMargin - p.ReservedCompletionTokens
	if p.MaxChunkSize > 0 && p.MaxChunkSize < budget {
		budget = p.MaxChunkSize
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

// Chunk splits text into ordered chunks whose estimated token counts fit the
// model's effective budget. Splitting prefers paragraph boundaries, then line
// boundaries. A single line that alone exceeds the budget becomes its own
// oversized chunk; nothing is ever truncated. Concatenating the returned
// chunks in order reproduces the input exactly.
func Chunk(text string, p config.ModelProfile) []string {
	if text == "" {
		return nil
	}

	budget := EffectiveBudget(p)
	if EstimateTokens(text) <= budget {
		return []string{text}
	}

	var chunks []string
	for _, piece := range pack(splitKeep(text, "\n\n"), budget) {
		if EstimateTokens(piece) <= budget {
			chunks = append(chunks, piece)
			continue
		}
		// A single paragraph too large for one call: fall back to lines.
		chunks = append(chunks, pack(splitKeep(piece, "\n"), budget)...)
	}
	return chunks
}

// pack greedily joins consecutive units into chunks under the budget. The
// budget check estimates the prospective concatenation, not a sum of per-unit
// estimates; the estimate truncates fractions per call, so summing parts can
// undercount the joined text. A unit that alone exceeds the budget is emitted
// as its own chunk.
func pack(units []string, budget int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, unit := range units {
		if current.Len() > 0 && EstimateTokens(current.String()+unit) > budget {
			flush()
		}
		if current.Len() == 0 && EstimateTokens(unit) > budget {
			chunks = append(chunks, unit)
			continue
		}
		current.WriteString(unit)
	}
	flush()
	return chunks
}

// splitKeep splits s on sep, keeping each separator attached to the segment it
// terminates so the segments concatenate back to s byte for byte.
func splitKeep(s, sep string) []string {
	parts := strings.Split(s, sep)
	segments := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
