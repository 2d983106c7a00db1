package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/engine"
)

// NudgeHandler exposes the engine's operations over HTTP.
type NudgeHandler struct {
	engine *engine.Engine
}

func NewNudgeHandler(eng *engine.Engine) *NudgeHandler {
	return &NudgeHandler{engine: eng}
}

// HandleStaleScan runs a stale-reminder scan for one user.
// POST /api/v1/scan/stale?user_id=U[&now=RFC3339]
func (h *NudgeHandler) HandleStaleScan(c *gin.Context) {
	h.handleScan(c, h.engine.ProcessStaleIssues)
}

// HandleDeadlineScan runs a deadline-warning scan for one user.
// POST /api/v1/scan/deadline?user_id=U[&now=RFC3339]
func (h *NudgeHandler) HandleDeadlineScan(c *gin.Context) {
	h.handleScan(c, h.engine.ProcessDeadlineWarnings)
}

func (h *NudgeHandler) handleScan(c *gin.Context, scan func(ctx context.Context, userID string, now time.Time) (*engine.ScanResult, error)) {
	ctx := c.Request.Context()

	userID := c.Query("user_id")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "user_id is required")
		return
	}

	now, ok := resolveNow(c)
	if !ok {
		return
	}

	result, err := scan(ctx, userID, now)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type createNotificationRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	IssueKey string `json:"issue_key" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Priority string `json:"priority" binding:"required"`
}

// HandleCreateNotification creates one notification directly, outside
// the scan filters. POST /api/v1/notifications
func (h *NudgeHandler) HandleCreateNotification(c *gin.Context) {
	ctx := c.Request.Context()

	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.engine.CreateNotification(ctx, req.UserID, req.IssueKey,
		domain.NotificationType(req.Type), domain.Priority(req.Priority), time.Now().UTC())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": record.ID, "scheduled_for": record.ScheduledFor})
}

type responseRequest struct {
	Response string `json:"response" binding:"required"`
}

// HandleResponse records a user's reaction to a delivered notification.
// POST /api/v1/notifications/:id/response
func (h *NudgeHandler) HandleResponse(c *gin.Context) {
	ctx := c.Request.Context()

	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.engine.RecordUserResponse(ctx, c.Param("id"), domain.ResponseType(req.Response), time.Now().UTC())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type achievementRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	AchievementType string `json:"achievement_type" binding:"required"`
	Count           int    `json:"count"`
	StreakDays      int    `json:"streak_days"`
	Detail          string `json:"detail"`
}

// HandleCreateAchievement creates an achievement-recognition
// notification. POST /api/v1/achievements
func (h *NudgeHandler) HandleCreateAchievement(c *gin.Context) {
	ctx := c.Request.Context()

	var req achievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.engine.CreateAchievementNotification(ctx, req.UserID, domain.AchievementContext{
		AchievementType: req.AchievementType,
		Count:           req.Count,
		StreakDays:      req.StreakDays,
		Detail:          req.Detail,
	}, time.Now().UTC())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": record.ID, "scheduled_for": record.ScheduledFor})
}

// HandleAnalytics returns the user's response summary.
// GET /api/v1/analytics/:user_id?days=N
func (h *NudgeHandler) HandleAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary, err := h.engine.GetNotificationAnalytics(ctx, c.Param("user_id"), days, time.Now().UTC())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// resolveNow reads the optional virtual-time query parameter used for
// deterministic batch testing.
func resolveNow(c *gin.Context) (time.Time, bool) {
	nowStr := c.Query("now")
	if nowStr == "" {
		return time.Now().UTC(), true
	}

	parsed, err := time.Parse(time.RFC3339, nowStr)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid now time format, expected RFC3339")
		return time.Time{}, false
	}

	slog.InfoContext(c.Request.Context(), "using virtual time", slog.Time("virtual_now", parsed))
	return parsed, true
}

func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrTypeDisabled),
		errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTrackingNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateNotification),
		errors.Is(err, domain.ErrFrequencyCapExceeded):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStorage):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
