package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ragchat/internal/domain/job"
	"github.com/yanqian/ragchat/internal/domain/rag"
)

// Handler wires the HTTP transport to the job producer and RAG
// services.
type Handler struct {
	producer *job.Producer
	docs     *rag.DocumentService
	ragSvc   *rag.RAGService
	pinger   interface{ Ping(context.Context) error }
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(producer *job.Producer, docs *rag.DocumentService, ragSvc *rag.RAGService, pinger interface{ Ping(context.Context) error }, logger *slog.Logger) *Handler {
	return &Handler{
		producer: producer,
		docs:     docs,
		ragSvc:   ragSvc,
		pinger:   pinger,
		logger:   logger.With("component", "http.handler"),
	}
}

// Health reports whether the process is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the process can reach its broker.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "not_ready", "broker unreachable", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
