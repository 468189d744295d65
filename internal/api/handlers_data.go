package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchCompanies runs a full-text query over a session's consolidated
// company directory.
func (h *Handler) SearchCompanies(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	if _, err := h.store.GetSession(c.Request.Context(), sessionID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}

	hits, err := h.search.Search(sessionID, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

// --- SEC data passthroughs ---

// SECCompanyFacts proxies the companyfacts dataset for one CIK.
func (h *Handler) SECCompanyFacts(c *gin.Context) {
	h.respondSEC(c, func() ([]byte, error) {
		return h.secdata.CompanyFacts(c.Request.Context(), c.Param("cik"))
	})
}

// SECCompanyConcept proxies one reported concept for one CIK.
func (h *Handler) SECCompanyConcept(c *gin.Context) {
	h.respondSEC(c, func() ([]byte, error) {
		return h.secdata.CompanyConcept(c.Request.Context(),
			c.Param("cik"), c.Param("taxonomy"), c.Param("tag"))
	})
}

// SECSubmissions proxies the filing history for one CIK.
func (h *Handler) SECSubmissions(c *gin.Context) {
	h.respondSEC(c, func() ([]byte, error) {
		return h.secdata.Submissions(c.Request.Context(), c.Param("cik"))
	})
}

func (h *Handler) respondSEC(c *gin.Context, fetch func() ([]byte, error)) {
	payload, err := fetch()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}
