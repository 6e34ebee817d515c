package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createDocumentRequest struct {
	Name        string `json:"name" binding:"required"`
	Content     string `json:"content" binding:"required"`
	ContentType string `json:"contentType"`
}

// IndexDocument ingests a document synchronously: it is persisted,
// chunked, embedded, and made retrievable before this handler returns.
func (h *Handler) IndexDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	doc, err := h.docs.Ingest(c.Request.Context(), req.Name, req.Content, req.ContentType)
	if err != nil {
		abortWithDomainError(c, "ingest_failed", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetDocument returns a previously indexed document's metadata and content.
func (h *Handler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid document id", err))
		return
	}

	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		abortWithDomainError(c, "fetch_failed", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document and its indexed chunks.
func (h *Handler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid document id", err))
		return
	}

	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		abortWithDomainError(c, "delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"topK"`
}

type searchResultResponse struct {
	ChunkID    uuid.UUID `json:"chunkId"`
	DocumentID uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
}

// SearchDocuments performs a direct retrieval query against the
// vector store, bypassing the chat agent.
func (h *Handler) SearchDocuments(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	results, err := h.ragSvc.Retrieve(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		abortWithDomainError(c, "search_failed", err)
		return
	}

	resp := make([]searchResultResponse, len(results))
	for i, r := range results {
		resp[i] = searchResultResponse{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Content:    r.Content,
			Score:      r.Score,
		}
	}
	c.JSON(http.StatusOK, resp)
}
