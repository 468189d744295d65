package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"dealscope/internal/llm"
	"dealscope/internal/models"
	"dealscope/internal/prompts"
	"dealscope/internal/store"
)

// ChatRequest is the chat endpoint's JSON body. SelectedFiles narrows the
// context to specific document paths; when empty, every summary in the
// session is offered.
type ChatRequest struct {
	SessionID     uint     `json:"sessionId" binding:"required"`
	Message       string   `json:"message" binding:"required"`
	Model         string   `json:"model"`
	SelectedFiles []string `json:"selectedFiles"`
}

// Chat answers a question about a session's documents. The assistant context
// is assembled from stored summaries and extractions, the capped chat history
// rides along, and both turns are appended to the session afterwards.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetSession(ctx, req.SessionID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}
	data, err := h.store.LoadHeavyData(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "session has no analyzed data yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	model := req.Model
	if model == "" {
		model = h.llmCfg.DefaultModel
	}
	profile := h.llmCfg.Profile(model)

	systemPrompt, err := h.library.Render(prompts.Chat, map[string]string{
		"text": chatContext(data, req.SelectedFiles, profile.MaxChunkSize),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.llmClient.Complete(ctx, llm.Request{
		Model:        model,
		SystemPrompt: systemPrompt,
		History:      chatHistory(data.ChatHistory),
		UserPrompt:   req.Message,
		APIKey:       h.apiKeyFor(model),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	data.ChatHistory = append(data.ChatHistory,
		models.ChatMessage{Role: models.RoleUser, Content: req.Message, CreatedAt: now},
		models.ChatMessage{Role: models.RoleAssistant, Content: resp.Content, CreatedAt: now},
	)
	if err := h.store.SaveHeavyData(ctx, req.SessionID, data); err != nil {
		h.log.WithField("session", req.SessionID).WithError(err).Error("saving chat history failed")
	}

	c.JSON(http.StatusOK, gin.H{"answer": resp.Content, "tokensUsed": resp.TokensUsed})
}

// chatContext assembles document context, preferring summaries and falling
// back to extracted text, truncated to roughly the model's chunk budget.
func chatContext(data *models.SessionData, selected []string, tokenBudget int) string {
	paths := selected
	if len(paths) == 0 {
		paths = make([]string, 0, len(data.Summaries))
		for path := range data.Summaries {
			paths = append(paths, path)
		}
		sort.Strings(paths)
	}

	// Rough conversion back from tokens; the chat context is advisory, not a
	// hard window guarantee.
	charBudget := tokenBudget * 4
	var b strings.Builder
	for _, path := range paths {
		section := data.Summaries[path]
		if section == "" {
			if text := data.ExtractedTexts[path]; text != nil {
				section = *text
			}
		}
		if section == "" {
			continue
		}
		if b.Len()+len(section) > charBudget && b.Len() > 0 {
			break
		}
		if len(section) > charBudget {
			section = truncateAtRune(section, charBudget)
		}
		b.WriteString("## " + path + "\n" + section + "\n\n")
	}
	if b.Len() == 0 {
		return "(no document context available)"
	}
	return b.String()
}

// truncateAtRune cuts s to at most n bytes without splitting a rune.
func truncateAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func chatHistory(history []models.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
