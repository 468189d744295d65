package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealscope/internal/auth"
	"dealscope/internal/config"
	"dealscope/internal/consolidator"
	"dealscope/internal/database/kafka"
	"dealscope/internal/llm"
	"dealscope/internal/pipeline"
	"dealscope/internal/prompts"
	"dealscope/internal/search"
	"dealscope/internal/secdata"
	"dealscope/internal/store"
	"dealscope/pkg/logger"
)

// Handler wires every API endpoint to its backing services.
type Handler struct {
	auth         *auth.Service
	store        *store.Store
	runner       *pipeline.Runner
	consolidator *consolidator.Consolidator
	llmClient    llm.Completer
	library      *prompts.Library
	search       *search.Service
	secdata      *secdata.Client
	audit        *kafka.AuditPublisher
	llmCfg       config.LLMConfig
	log          *logger.Logger
}

// NewHandler creates the Handler.
func NewHandler(
	authService *auth.Service,
	s *store.Store,
	runner *pipeline.Runner,
	cons *consolidator.Consolidator,
	llmClient llm.Completer,
	library *prompts.Library,
	searchService *search.Service,
	secdataClient *secdata.Client,
	audit *kafka.AuditPublisher,
	llmCfg config.LLMConfig,
) *Handler {
	return &Handler{
		auth:         authService,
		store:        s,
		runner:       runner,
		consolidator: cons,
		llmClient:    llmClient,
		library:      library,
		search:       searchService,
		secdata:      secdataClient,
		audit:        audit,
		llmCfg:       llmCfg,
		log:          logger.New("api"),
	}
}

// --- Registration and login ---

// RegisterRequest is the register endpoint's JSON body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": user.ID})
}

// LoginRequest is the login endpoint's JSON body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
