package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetCurrent    = "failed to load current conditions"
	errGetHistory    = "failed to load history"
	errStartInvalid  = "invalid 'start' time; use RFC3339 or YYYY-MM-DD"
	errEndInvalid    = "invalid 'end' time; use RFC3339 or YYYY-MM-DD"
	errRangeRequired = "'start' and 'end' are required"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current conditions
// @Description  Latest reading enriched with trends, derived quantities, predictions, today's summary and the official comparison.
// @Tags         weather
// @Produce      json
// @Success      200  {object}  service.CurrentConditions
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/current [get]
func (h *Handler) current(c *gin.Context) {
	ctx := c.Request.Context()
	payload, err := h.services.Monitoring.CurrentReading(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetCurrent, "current_failed", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// parseHours reads ?hours= with a zero default; the service clamps bounds.
func parseHours(c *gin.Context) int {
	if s := c.Query("hours"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

// @Summary      Reading history
// @Tags         weather
// @Produce      json
// @Param        hours  query  int  false  "Trailing window in hours (1-168, default 24)"
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [get]
func (h *Handler) history(c *gin.Context) {
	ctx := c.Request.Context()
	readings, err := h.services.History.History(ctx, parseHours(c))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      Pressure history
// @Tags         weather
// @Produce      json
// @Param        hours  query  int  false  "Trailing window in hours (1-168, default 24)"
// @Success      200  {object}  map[string]interface{}  "count, points"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history/pressure [get]
func (h *Handler) pressureHistory(c *gin.Context) {
	ctx := c.Request.Context()
	points, err := h.services.History.PressureHistory(ctx, parseHours(c))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "pressure_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(points),
		"points": points,
	})
}

// @Summary      Week history
// @Description  Seven days of readings downsampled to 15-minute bucket means.
// @Tags         weather
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history/week [get]
func (h *Handler) weekHistory(c *gin.Context) {
	ctx := c.Request.Context()
	readings, err := h.services.History.WeekHistory(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "week_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// parseDateRange reads required start/end query params. A date-only 'end' is
// treated as end-of-day inclusive.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	startQ, endQ := c.Query("start"), c.Query("end")
	if startQ == "" || endQ == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRangeRequired})
		return time.Time{}, time.Time{}, false
	}

	start, err := parseQueryTime(startQ)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errStartInvalid})
		return time.Time{}, time.Time{}, false
	}
	end, err := parseQueryTime(endQ)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEndInvalid})
		return time.Time{}, time.Time{}, false
	}
	if isDateOnly(endQ) {
		end = end.Add(24*time.Hour - time.Nanosecond).UTC()
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'start' must be <= 'end'"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// @Summary      Range analysis
// @Description  Downsampled readings, stored predictions, tagged events and a period summary for [start, end]. Date-only 'end' is treated as end-of-day inclusive.
// @Tags         weather
// @Produce      json
// @Param        start  query  string  true  "Start (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        end    query  string  true  "End (same formats; date-only means end of day)"  example(2025-08-31)
// @Success      200  {object}  models.Analysis
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/analysis [get]
func (h *Handler) analysis(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	result, err := h.services.History.Analysis(ctx, start, end)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "analysis_failed", err, "start", start, "end", end)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      Stored predictions
// @Tags         weather
// @Produce      json
// @Param        start  query  string  true  "Start (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        end    query  string  true  "End (same formats; date-only means end of day)"
// @Success      200  {object}  map[string]interface{}  "count, predictions"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/predictions [get]
func (h *Handler) predictions(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	records, err := h.services.History.Predictions(ctx, start, end)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "predictions_failed", err, "start", start, "end", end)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(records),
		"predictions": records,
	})
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
