package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/ragchat/internal/domain/job"
)

type chatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message" binding:"required"`
}

// Chat enqueues a ChatJob and returns its job ID so the caller can
// poll for the answer.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	conversationID := uuid.New()
	if req.ConversationID != "" {
		parsed, err := uuid.Parse(req.ConversationID)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid conversationId", err))
			return
		}
		conversationID = parsed
	}

	jobID, err := h.producer.EnqueueChat(c.Request.Context(), conversationID, req.Message)
	if err != nil {
		abortWithDomainError(c, "enqueue_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"jobId":          jobID,
		"conversationId": conversationID,
		"status":         "queued",
	})
}

// ChatJobStatus returns the current status/result of a chat job.
func (h *Handler) ChatJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid job_id", err))
		return
	}

	result, ok, err := h.producer.Status(c.Request.Context(), jobID)
	if err != nil {
		abortWithDomainError(c, "status_lookup_failed", err)
		return
	}
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "job not found", nil))
		return
	}

	c.JSON(http.StatusOK, jobStatusResponse(result))
}

func jobStatusResponse(result job.Result) gin.H {
	return gin.H{
		"jobId":     result.JobID,
		"kind":      result.Kind,
		"status":    result.Status,
		"result":    result.Output,
		"error":     result.Error,
		"updatedAt": result.UpdatedAt,
	}
}
