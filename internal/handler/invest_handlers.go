package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/service"
	"github.com/team-popo-world/back-repo/internal/utils"
)

func (h *InvestHandler) getChapter(c *gin.Context) {
	chapterID, ok := parseUUIDQuery(c, "chapterId")
	if !ok {
		return
	}

	start, err := h.invest.GetChapter(c.Request.Context(), childID(c), chapterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapterResponse{
		SessionID: start.Session.SessionID,
		Story:     storyJSON(start.Scenario.Story),
	})
}

func (h *InvestHandler) recordTurn(c *gin.Context) {
	chapterID, ok := parseUUIDQuery(c, "chapterId")
	if !ok {
		return
	}
	turn, err := strconv.Atoi(strings.TrimSpace(c.Query("turn")))
	if err != nil || turn < 1 {
		badRequest(c, "query parameter 'turn' must be an integer >= 1")
		return
	}

	var req recordTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	sessionID, ok := parseUUIDField(c, "sessionId", req.SessionID)
	if !ok {
		return
	}
	startedAt, err := utils.ParseGameTime(req.StartedAt, h.location)
	if err != nil {
		badRequest(c, "field 'started_at': "+err.Error())
		return
	}
	endedAt, err := utils.ParseGameTime(req.EndedAt, h.location)
	if err != nil {
		badRequest(c, "field 'ended_at': "+err.Error())
		return
	}

	history, err := h.invest.RecordTurn(c.Request.Context(), childID(c), service.TurnInput{
		SessionID:       sessionID,
		ChapterID:       chapterID,
		Turn:            turn,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		RiskLevel:       *req.RiskLevel,
		CurrentPoint:    *req.CurrentPoint,
		BeforeValue:     *req.BeforeValue,
		CurrentValue:    *req.CurrentValue,
		InitialValue:    *req.InitialValue,
		NumberOfShares:  *req.NumberOfShares,
		Income:          *req.Income,
		TransactionType: req.TransactionType,
		PlusClick:       *req.PlusClick,
		MinusClick:      *req.MinusClick,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recordTurnResponse{Message: "turn recorded", HistoryID: history.ID})
}

func (h *InvestHandler) clearChapter(c *gin.Context) {
	chapterID, ok := parseUUIDQuery(c, "chapterId")
	if !ok {
		return
	}

	var req clearChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	sessionID, ok := parseUUIDField(c, "sessionId", req.SessionID)
	if !ok {
		return
	}

	session, err := h.invest.ClearChapter(c.Request.Context(), chapterID, sessionID, models.SessionOutcome{
		Success: *req.Success,
		Profit:  *req.Profit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, clearChapterResponse{Message: "chapter cleared", SessionID: session.SessionID})
}

func (h *InvestHandler) createScenario(c *gin.Context) {
	chapterID, ok := parseUUIDQuery(c, "chapterId")
	if !ok {
		return
	}

	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	scenario, err := h.invest.CreateScenario(c.Request.Context(), childID(c), chapterID, req.Story, *req.IsCustom)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scenarioResponse{Message: "scenario created", ScenarioID: scenario.ScenarioID})
}

func (h *InvestHandler) updateScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	scenario, err := h.invest.UpdateOldestScenario(c.Request.Context(), req.Story, *req.IsCustom)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scenarioResponse{Message: "scenario updated", ScenarioID: scenario.ScenarioID})
}

func (h *InvestHandler) listHistory(c *gin.Context) {
	sessionID, ok := parseUUIDQuery(c, "sessionId")
	if !ok {
		return
	}

	histories, err := h.invest.ListHistory(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if histories == nil {
		histories = []models.InvestHistory{}
	}
	c.JSON(http.StatusOK, histories)
}
