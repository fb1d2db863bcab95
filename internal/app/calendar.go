package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"calendar-service/internal/event"
	"calendar-service/internal/user"
)

const dateLayout = "2006-01-02"

type createCalendarReq struct {
	Name          string `json:"name" binding:"required"`
	From          string `json:"from" binding:"required"` // YYYY-MM-DD
	To            string `json:"to" binding:"required"`
	InitialStatus string `json:"initial_status,omitempty"` // unassigned (default) or free
}

// POST /api/calendars
// Provisions a calendar with one event per date in [from, to].
func (a *App) CreateCalendarHandler(c *gin.Context) {
	_, role := identity(c)
	if role != user.RoleAdministrator {
		c.JSON(http.StatusForbidden, gin.H{"error": "only administrators may create calendars"})
		return
	}

	var req createCalendarReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from (YYYY-MM-DD)"})
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to (YYYY-MM-DD)"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
		return
	}

	initial := event.StatusUnassigned
	switch req.InitialStatus {
	case "", string(event.StatusUnassigned):
	case string(event.StatusFree):
		initial = event.StatusFree
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "initial_status must be unassigned or free"})
		return
	}

	cal := &event.Calendar{ID: uuid.New().String(), Name: req.Name}
	events := generateDateSlots(cal.ID, from, to, initial)

	if err := a.Events.CreateCalendar(c.Request.Context(), cal, events); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"calendar": cal,
		"events":   len(events),
	})
}

// generateDateSlots expands the date range into one event per calendar day.
func generateDateSlots(calendarID string, from, to time.Time, initial event.Status) []event.CalendarEvent {
	var out []event.CalendarEvent
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, event.CalendarEvent{
			ID:         uuid.New().String(),
			CalendarID: calendarID,
			Date:       time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Status:     initial,
		})
	}
	return out
}

// GET /api/calendars/:id/events?from=YYYY-MM-DD&to=YYYY-MM-DD
// The client re-fetches this after every transfer mutation to refresh its
// calendar view.
func (a *App) ListCalendarEventsHandler(c *gin.Context) {
	calendarID := c.Param("id")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	var (
		from time.Time
		to   time.Time
		err  error
	)
	if fromStr != "" && toStr != "" {
		from, err = time.Parse(dateLayout, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from (YYYY-MM-DD)"})
			return
		}
		to, err = time.Parse(dateLayout, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to (YYYY-MM-DD)"})
			return
		}
		if to.Before(from) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must not be after to"})
			return
		}
	}

	events, err := a.Events.ListByCalendar(c.Request.Context(), calendarID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
