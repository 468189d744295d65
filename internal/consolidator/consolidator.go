// Package consolidator merges per-file company extractions into one
// deduplicated, cross-year company directory. The combined raw records for a
// large batch can exceed a single context window, so records are re-chunked
// and consolidated chunk by chunk, then structurally merged.
package consolidator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dealscope/internal/chunker"
	"dealscope/internal/config"
	"dealscope/internal/llm"
	"dealscope/internal/llmjson"
	"dealscope/internal/models"
	"dealscope/internal/prompts"
	"dealscope/pkg/logger"
)

// ChunkError reports one consolidation chunk that was dropped.
type ChunkError struct {
	Chunk   int    `json:"chunk"`
	Message string `json:"message"`
}

// Consolidator runs the consolidation phase of a pipeline run.
type Consolidator struct {
	completer llm.Completer
	library   *prompts.Library
	log       *logger.Logger
}

// New creates a Consolidator.
func New(completer llm.Completer, library *prompts.Library) *Consolidator {
	return &Consolidator{
		completer: completer,
		library:   library,
		log:       logger.New("consolidator"),
	}
}

// Consolidate merges the per-file extractions into one company directory.
// A chunk that fails (transport or unparseable JSON) is dropped and reported
// in the returned ChunkError list while consolidation continues. Only when
// every chunk fails does Consolidate return an error, so a run can never
// silently report success with no data.
func (c *Consolidator) Consolidate(
	ctx context.Context,
	companies map[string][]models.CompanyRecord,
	model string,
	profile config.ModelProfile,
	apiKey string,
) ([]models.ConsolidatedCompany, []ChunkError, error) {
	records := flatten(companies)
	if len(records) == 0 {
		return nil, nil, nil
	}

	// One record per paragraph so the chunker can split on record
	// boundaries; a single flat JSON array would be unsplittable.
	lines := make([]string, 0, len(records))
	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, nil, fmt.Errorf("serialize company record %q: %w", record.Name, err)
		}
		lines = append(lines, string(raw))
	}

	chunks := chunker.Chunk(strings.Join(lines, "\n\n"), profile)
	var merged []models.ConsolidatedCompany
	var chunkErrors []ChunkError

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return merged, chunkErrors, err
		}

		parsed, err := c.consolidateChunk(ctx, chunk, model, apiKey)
		if err != nil {
			c.log.WithField("chunk", i+1).WithError(err).Warn("dropping failed consolidation chunk")
			chunkErrors = append(chunkErrors, ChunkError{Chunk: i + 1, Message: err.Error()})
			continue
		}

		// Merging in chunk index order makes last-write-wins deterministic.
		merged = Merge(merged, parsed)
	}

	if len(merged) == 0 && len(chunkErrors) == len(chunks) {
		return nil, chunkErrors, fmt.Errorf("all %d consolidation chunks failed", len(chunks))
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, chunkErrors, nil
}

func (c *Consolidator) consolidateChunk(ctx context.Context, chunk, model, apiKey string) ([]models.ConsolidatedCompany, error) {
	prompt, err := c.library.Render(prompts.Consolidate, map[string]string{"rawData": chunk})
	if err != nil {
		return nil, err
	}

	resp, err := c.completer.Complete(ctx, llm.Request{
		Model:      model,
		UserPrompt: prompt,
		APIKey:     apiKey,
	})
	if err != nil {
		return nil, err
	}

	return llmjson.DecodeArray[models.ConsolidatedCompany](resp.Content, (*models.ConsolidatedCompany).Validate)
}

// flatten combines every file's records in sorted path order, giving the
// chunker a deterministic input regardless of map iteration.
func flatten(companies map[string][]models.CompanyRecord) []models.CompanyRecord {
	paths := make([]string, 0, len(companies))
	for path, records := range companies {
		if len(records) > 0 {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var out []models.CompanyRecord
	for _, path := range paths {
		out = append(out, companies[path]...)
	}
	return out
}
