package director

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/storycut/internal/curator"
)

// handleCurate forwards one prompt to the model.
// POST /v1/curate {client_id, prompt} -> {text}
func (s *implServer) handleCurate(c *gin.Context) {
	ctx := c.Request.Context()

	var req curator.CurateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, curator.CurateResponse{Error: "invalid JSON payload"})
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, curator.CurateResponse{Error: "client_id and prompt are required"})
		return
	}

	used, err := s.quota.Use(ctx, req.ClientID, s.now())
	if err != nil {
		s.logger.Error(ctx, "Quota store failed for %s: %v", req.ClientID, err)
		c.JSON(http.StatusServiceUnavailable, curator.CurateResponse{Error: "quota store unavailable"})
		return
	}
	if s.limit > 0 && used > s.limit {
		s.logger.Warn(ctx, "Client %s is over its daily quota (%d/%d)", req.ClientID, used, s.limit)
		c.JSON(http.StatusForbidden, curator.CurateResponse{Error: "daily quota exceeded"})
		return
	}

	s.logger.Info(ctx, "Curate request from %s (%d/%d today, %d bytes)", req.ClientID, used, s.limit, len(req.Prompt))
	text, err := s.reasoner.Reason(ctx, req.Prompt)
	if err != nil {
		if curator.IsQuotaError(err) {
			s.logger.Warn(ctx, "Model quota exhausted: %v", err)
			c.JSON(http.StatusTooManyRequests, curator.CurateResponse{Error: "model quota exhausted, retry later"})
			return
		}
		s.logger.Error(ctx, "Model call failed for %s: %v", req.ClientID, err)
		c.JSON(http.StatusBadGateway, curator.CurateResponse{Error: "model call failed"})
		return
	}

	c.JSON(http.StatusOK, curator.CurateResponse{Text: text})
}
