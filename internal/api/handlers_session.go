package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealscope/internal/models"
	"dealscope/internal/store"
)

// CreateSessionRequest names a new session.
type CreateSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSession inserts a new session row for the caller.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.store.CreateSession(c.Request.Context(), currentUserID(c), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "name": session.Name})
}

// ListSessions returns the caller's sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session row.
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.store.GetSession(c.Request.Context(), sessionID, currentUserID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session, its heavy blob, and its search index.
func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteSession(c.Request.Context(), sessionID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}
	h.search.DropSession(sessionID)
	c.JSON(http.StatusOK, gin.H{"deleted": sessionID})
}

// SaveSessionData replaces a session's heavy blob and rebuilds its company
// search index.
func (h *Handler) SaveSessionData(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetSession(c.Request.Context(), sessionID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}

	var data models.SessionData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SaveHeavyData(c.Request.Context(), sessionID, &data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.search.IndexSession(sessionID, data.ConsolidatedCompanies); err != nil {
		h.log.WithError(err).Warn("failed to rebuild company index")
	}
	c.JSON(http.StatusOK, gin.H{"saved": sessionID})
}

// LoadSessionData returns a session's heavy blob.
func (h *Handler) LoadSessionData(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetSession(c.Request.Context(), sessionID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}

	data, err := h.store.LoadHeavyData(c.Request.Context(), sessionID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// pathID parses a uint path parameter, answering 400 on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondStoreError maps gateway errors onto status codes.
func respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
