package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"weatherbox/internal/service"
)

const errListEvents = "failed to load events"

// @Summary      Recent tagged events
// @Tags         events
// @Produce      json
// @Param        limit  query  int  false  "Maximum events to return (default 20)"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/events [get]
func (h *Handler) listEvents(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}

	ctx := c.Request.Context()
	events, err := h.services.Events.Recent(ctx, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListEvents, "events_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Tag a weather event
// @Description  Records an observed event ("thunderstorm", "fog", ...) with a snapshot of current conditions and the predictions active at tagging time.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body  service.TagParams  true  "Event payload"
// @Success      200  {object}  models.WeatherEvent
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/events [post]
// @Security     BearerAuth
func (h *Handler) tagEvent(c *gin.Context) {
	var input service.TagParams
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.services.Events.Tag(ctx, input)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("event_tag_failed", "err", err, "event_type", input.EventType)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}
