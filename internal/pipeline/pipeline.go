// Package pipeline orchestrates the per-file analysis phases: text
// extraction, chunked summarization, and chunked company extraction. Files
// are processed sequentially in depth-first tree order; a failing chunk or
// file is recorded and never aborts the batch.
package pipeline

import (
	"context"
	"fmt"

	"dealscope/internal/chunker"
	"dealscope/internal/config"
	"dealscope/internal/extractor"
	"dealscope/internal/llm"
	"dealscope/internal/llmjson"
	"dealscope/internal/models"
	"dealscope/internal/prompts"
	"dealscope/pkg/logger"
)

// Request describes one pipeline run. It is immutable for the duration of
// the run; all outputs travel through the Result and the event stream.
type Request struct {
	Tree *models.FileNode

	// ExtractedTexts carries previously extracted text keyed by full path.
	// Files present here skip re-extraction; a nil entry marks a file already
	// known to be non-extractable.
	ExtractedTexts map[string]*string

	Summarize        bool
	ExtractCompanies bool

	Model   string
	Profile config.ModelProfile
	APIKey  string
}

// Result accumulates every per-file output of a run. Maps are keyed by the
// file's full path.
type Result struct {
	ExtractedTexts     map[string]*string
	Summaries          map[string]string
	ExtractedCompanies map[string][]models.CompanyRecord
	RawResponses       map[string][]string
	Errors             map[string][]string
}

func newResult() *Result {
	return &Result{
		ExtractedTexts:     make(map[string]*string),
		Summaries:          make(map[string]string),
		ExtractedCompanies: make(map[string][]models.CompanyRecord),
		RawResponses:       make(map[string][]string),
		Errors:             make(map[string][]string),
	}
}

// ErrorCount returns the number of recorded per-file error entries.
func (r *Result) ErrorCount() int {
	n := 0
	for _, msgs := range r.Errors {
		n += len(msgs)
	}
	return n
}

// Runner executes pipeline requests against an LLM backend.
type Runner struct {
	completer llm.Completer
	library   *prompts.Library
	log       *logger.Logger
}

// New creates a Runner. Tests pass a stub Completer; production passes the
// dispatching llm.Client.
func New(completer llm.Completer, library *prompts.Library) *Runner {
	return &Runner{
		completer: completer,
		library:   library,
		log:       logger.New("pipeline"),
	}
}

// Run processes every file of the request tree in depth-first order. Progress
// events are sent to events when it is non-nil; the caller must drain the
// channel. The context is checked before every file and every LLM call, so
// cancellation takes effect at the next suspension point.
//
// Run returns an error only for cancellation; per-file failures are recorded
// in Result.Errors and the batch continues.
func (r *Runner) Run(ctx context.Context, req Request, events chan<- Event) (*Result, error) {
	result := newResult()
	files := req.Tree.Files()
	total := len(files)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		emit(events, Event{Type: EventFileStart, Path: file.FullPath, ProcessedFiles: i, TotalFiles: total})

		r.processFile(ctx, req, file, result, events)
		if err := ctx.Err(); err != nil {
			return result, err
		}

		emit(events, Event{Type: EventFileDone, Path: file.FullPath, ProcessedFiles: i + 1, TotalFiles: total})
	}

	emit(events, Event{Type: EventRunDone, ProcessedFiles: total, TotalFiles: total})
	return result, nil
}

func (r *Runner) processFile(ctx context.Context, req Request, file *models.FileNode, result *Result, events chan<- Event) {
	text, ok := r.extractText(req, file, result)
	if !ok {
		// Non-extractable file: done, no error.
		return
	}

	if req.Summarize {
		r.summarize(ctx, req, file.FullPath, text, result, events)
	}
	if req.ExtractCompanies {
		r.extractCompanies(ctx, req, file.FullPath, text, result, events)
	}
}

// extractText resolves a file's plain text, reusing prior extractions when
// the request carries them. ok=false means the file takes no further part in
// the run.
func (r *Runner) extractText(req Request, file *models.FileNode, result *Result) (string, bool) {
	if prior, known := req.ExtractedTexts[file.FullPath]; known {
		result.ExtractedTexts[file.FullPath] = prior
		if prior == nil {
			return "", false
		}
		return *prior, true
	}

	text, ok, err := extractor.Extract(file.Name, file.Payload)
	if err != nil {
		result.ExtractedTexts[file.FullPath] = nil
		recordError(result, file.FullPath, fmt.Sprintf("extract text: %v", err))
		return "", false
	}
	if !ok {
		result.ExtractedTexts[file.FullPath] = nil
		r.log.WithField("path", file.FullPath).Debug("file type not extractable, skipping")
		return "", false
	}

	result.ExtractedTexts[file.FullPath] = &text
	return text, true
}

// summarize runs the summarization phase for one file: chunk, call the model
// per chunk, concatenate chunk summaries in order.
func (r *Runner) summarize(ctx context.Context, req Request, path, text string, result *Result, events chan<- Event) {
	chunks := chunker.Chunk(text, req.Profile)
	summary := ""

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return
		}
		emit(events, Event{Type: EventChunk, Path: path, Phase: PhaseSummarize, CurrentChunk: i + 1, TotalChunks: len(chunks)})

		prompt, err := r.library.Render(prompts.Summarize, map[string]string{"documentText": chunk})
		if err != nil {
			recordError(result, path, fmt.Sprintf("summarize chunk %d: %v", i+1, err))
			continue
		}

		resp, err := r.completer.Complete(ctx, llm.Request{
			Model:      req.Model,
			UserPrompt: prompt,
			APIKey:     req.APIKey,
		})
		if err != nil {
			recordError(result, path, fmt.Sprintf("summarize chunk %d: %v", i+1, err))
			emit(events, Event{Type: EventFileError, Path: path, Phase: PhaseSummarize, Err: err.Error()})
			continue
		}

		if summary != "" {
			summary += "\n\n"
		}
		summary += resp.Content
	}

	if summary != "" {
		result.Summaries[path] = summary
	}
}

// extractCompanies runs the company extraction phase for one file: chunk,
// call the model per chunk, strictly parse each chunk's JSON array, append.
func (r *Runner) extractCompanies(ctx context.Context, req Request, path, text string, result *Result, events chan<- Event) {
	chunks := chunker.Chunk(text, req.Profile)

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return
		}
		emit(events, Event{Type: EventChunk, Path: path, Phase: PhaseCompanies, CurrentChunk: i + 1, TotalChunks: len(chunks)})

		prompt, err := r.library.Render(prompts.ExtractCompanies, map[string]string{
			"documentText": chunk,
			"variables":    "revenue, ebitda, net_income, total_assets",
		})
		if err != nil {
			recordError(result, path, fmt.Sprintf("extract companies chunk %d: %v", i+1, err))
			continue
		}

		resp, err := r.completer.Complete(ctx, llm.Request{
			Model:      req.Model,
			UserPrompt: prompt,
			APIKey:     req.APIKey,
		})
		if err != nil {
			recordError(result, path, fmt.Sprintf("extract companies chunk %d: %v", i+1, err))
			emit(events, Event{Type: EventFileError, Path: path, Phase: PhaseCompanies, Err: err.Error()})
			continue
		}
		result.RawResponses[path] = append(result.RawResponses[path], resp.Content)

		records, err := llmjson.DecodeArray[models.CompanyRecord](resp.Content, (*models.CompanyRecord).Validate)
		if err != nil {
			recordError(result, path, fmt.Sprintf("extract companies chunk %d: %v", i+1, err))
			emit(events, Event{Type: EventFileError, Path: path, Phase: PhaseCompanies, Err: err.Error()})
			continue
		}
		result.ExtractedCompanies[path] = append(result.ExtractedCompanies[path], records...)
	}
}

func recordError(result *Result, path, message string) {
	result.Errors[path] = append(result.Errors[path], message)
}
