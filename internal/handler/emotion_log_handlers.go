package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
)

func (h *InvestHandler) publishEmotionLog(c *gin.Context) {
	var req emotionLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.emotions.Publish(c.Request.Context(), req.UserID, req.Type, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, emotionLogResponse{Message: "emotion log accepted", LogID: entry.ID})
}

func (h *InvestHandler) searchEmotionLogs(c *gin.Context) {
	query := search.EmotionLogQuery{
		UserID: c.Query("userId"),
		Type:   c.Query("type"),
		Text:   c.Query("q"),
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "query parameter 'size' must be an integer")
			return
		}
		query.Size = size
	}

	logs, err := h.emotions.Search(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if logs == nil {
		logs = []models.EmotionLog{}
	}
	c.JSON(http.StatusOK, logs)
}
