package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dealscope/internal/consolidator"
	"dealscope/internal/database/kafka"
	"dealscope/internal/loader"
	"dealscope/internal/models"
	"dealscope/internal/pipeline"
	"dealscope/internal/store"
)

// analyzeOptions are the form fields of the analyze endpoint.
type analyzeOptions struct {
	Model            string
	Summarize        bool
	ExtractCompanies bool
	Consolidate      bool
	SessionID        uint
	UploadID         uint
}

// analyzeResult is the terminal NDJSON line of an analyze stream.
type analyzeResult struct {
	RunID                 string                               `json:"runId"`
	Summaries             map[string]string                    `json:"summaries,omitempty"`
	ExtractedCompanies    map[string][]models.CompanyRecord    `json:"extractedCompanies,omitempty"`
	ConsolidatedCompanies []models.ConsolidatedCompany         `json:"consolidatedCompanies,omitempty"`
	ConsolidationErrors   []consolidator.ChunkError            `json:"consolidationErrors,omitempty"`
	Errors                map[string][]string                  `json:"errors,omitempty"`
}

// Analyze runs the full document pipeline over a fresh multipart batch or a
// previously stored upload. Progress is streamed as newline-delimited JSON:
// one {"event": ...} line per pipeline event, then one {"result": ...} line.
func (h *Handler) Analyze(c *gin.Context) {
	opts := h.parseAnalyzeOptions(c)
	if opts == nil {
		return
	}

	req := pipeline.Request{
		Summarize:        opts.Summarize,
		ExtractCompanies: opts.ExtractCompanies,
		Model:            opts.Model,
		Profile:          h.llmCfg.Profile(opts.Model),
		APIKey:           h.apiKeyFor(opts.Model),
	}
	if !h.resolveAnalyzeInput(c, opts, &req) {
		return
	}

	userID := currentUserID(c)
	runID := uuid.NewString()
	files := req.Tree.Files()

	h.publishAudit(c, &kafka.RunEvent{
		RunID: runID, UserID: userID, Event: "started",
		Model: opts.Model, TotalFiles: len(files), Timestamp: time.Now(),
	})

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.WriteHeader(http.StatusOK)

	events := make(chan pipeline.Event, 16)
	type runOutcome struct {
		result *pipeline.Result
		err    error
	}
	done := make(chan runOutcome, 1)
	go func() {
		defer close(events)
		result, err := h.runner.Run(c.Request.Context(), req, events)
		done <- runOutcome{result: result, err: err}
	}()

	enc := json.NewEncoder(c.Writer)
	for event := range events {
		_ = enc.Encode(gin.H{"event": event})
		c.Writer.Flush()
	}
	outcome := <-done
	result := outcome.result
	if outcome.err != nil {
		_ = enc.Encode(gin.H{"error": outcome.err.Error()})
		c.Writer.Flush()
		return
	}

	final := analyzeResult{
		RunID:              runID,
		Summaries:          result.Summaries,
		ExtractedCompanies: result.ExtractedCompanies,
		Errors:             result.Errors,
	}

	if opts.Consolidate {
		merged, chunkErrs, err := h.consolidator.Consolidate(
			c.Request.Context(), result.ExtractedCompanies, opts.Model, req.Profile, req.APIKey)
		if err != nil {
			_ = enc.Encode(gin.H{"error": err.Error()})
			c.Writer.Flush()
			return
		}
		final.ConsolidatedCompanies = merged
		final.ConsolidationErrors = chunkErrs
	}

	if opts.SessionID != 0 {
		if err := h.saveAnalyzeRun(c, opts.SessionID, userID, req.Tree, result, final.ConsolidatedCompanies); err != nil {
			h.log.WithField("session", opts.SessionID).WithError(err).Error("saving analyze run failed")
			_ = enc.Encode(gin.H{"warning": "session save failed: " + err.Error()})
		}
	}

	h.publishAudit(c, &kafka.RunEvent{
		RunID: runID, UserID: userID, Event: "completed",
		Model: opts.Model, TotalFiles: len(files),
		ErrorCount: result.ErrorCount(), Timestamp: time.Now(),
	})

	_ = enc.Encode(gin.H{"result": final})
	c.Writer.Flush()
}

func (h *Handler) parseAnalyzeOptions(c *gin.Context) *analyzeOptions {
	opts := &analyzeOptions{
		Model:            c.PostForm("model"),
		Summarize:        c.PostForm("summarize") != "false",
		ExtractCompanies: c.PostForm("extractCompanies") != "false",
		Consolidate:      c.PostForm("consolidate") == "true",
	}
	if opts.Model == "" {
		opts.Model = h.llmCfg.DefaultModel
	}
	if raw := c.PostForm("sessionId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sessionId"})
			return nil
		}
		opts.SessionID = uint(id)
	}
	if raw := c.PostForm("uploadId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uploadId"})
			return nil
		}
		opts.UploadID = uint(id)
	}
	return opts
}

// resolveAnalyzeInput fills the pipeline request's tree, either from a stored
// upload (reusing its persisted extractions) or from the multipart body.
func (h *Handler) resolveAnalyzeInput(c *gin.Context, opts *analyzeOptions, req *pipeline.Request) bool {
	if opts.UploadID == 0 {
		tree, ok := h.readUploadTree(c, "analysis")
		if !ok {
			return false
		}
		req.Tree = tree
		return true
	}

	upload, err := h.store.GetUpload(c.Request.Context(), opts.UploadID, currentUserID(c))
	if err != nil {
		respondStoreError(c, err)
		return false
	}

	files := make([]loader.NamedFile, 0, len(upload.Files))
	extracted := make(map[string]*string, len(upload.Files))
	for _, f := range upload.Files {
		files = append(files, loader.NamedFile{Path: f.FilePath})
		if f.Extraction == "" {
			extracted[upload.Name+"/"+f.FilePath] = nil
			continue
		}
		text := f.Extraction
		extracted[upload.Name+"/"+f.FilePath] = &text
	}
	tree, err := loader.LoadFiles(upload.Name, files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	req.Tree = tree
	req.ExtractedTexts = extracted
	return true
}

// saveAnalyzeRun folds a finished run into the session's heavy blob and
// refreshes the session's company index.
func (h *Handler) saveAnalyzeRun(
	c *gin.Context,
	sessionID, userID uint,
	tree *models.FileNode,
	result *pipeline.Result,
	consolidated []models.ConsolidatedCompany,
) error {
	ctx := c.Request.Context()
	if _, err := h.store.GetSession(ctx, sessionID, userID); err != nil {
		return err
	}

	data, err := h.store.LoadHeavyData(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		data = &models.SessionData{}
	}
	data.FileTree = tree.ToDTO(true)
	data.ExtractedTexts = result.ExtractedTexts
	data.Summaries = result.Summaries
	data.ExtractedCompanies = result.ExtractedCompanies
	if consolidated != nil {
		data.ConsolidatedCompanies = consolidated
	}

	if err := h.store.SaveHeavyData(ctx, sessionID, data); err != nil {
		return err
	}
	if err := h.search.IndexSession(sessionID, data.ConsolidatedCompanies); err != nil {
		h.log.WithField("session", sessionID).WithError(err).Warn("rebuilding company index failed")
	}
	return nil
}

// apiKeyFor resolves the provider credential for a "provider:model" name.
func (h *Handler) apiKeyFor(model string) string {
	switch {
	case hasProviderPrefix(model, "openai"):
		return h.llmCfg.OpenAI.APIKey
	case hasProviderPrefix(model, "deepseek"):
		return h.llmCfg.DeepSeek.APIKey
	case hasProviderPrefix(model, "gemini"):
		return h.llmCfg.Gemini.APIKey
	default:
		return ""
	}
}

func hasProviderPrefix(model, provider string) bool {
	return len(model) > len(provider) && model[:len(provider)] == provider && model[len(provider)] == ':'
}

func (h *Handler) publishAudit(c *gin.Context, event *kafka.RunEvent) {
	if err := h.audit.Publish(c.Request.Context(), event); err != nil {
		h.log.WithError(err).Warn("publishing run audit event failed")
	}
}
