package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"calendar-service/internal/event"
	"calendar-service/internal/transfer"
)

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, event.ErrValidation), errors.Is(err, event.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, event.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, event.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already resolved, refresh and try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type initiateTransferReq struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

// POST /api/events/:id/transfer
func (a *App) InitiateTransferHandler(c *gin.Context) {
	eventID := c.Param("id")
	userID, _ := identity(c)

	var req initiateTransferReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := a.Coordinator.Initiate(c.Request.Context(), eventID, userID, req.ToUserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// POST /api/events/:id/accept
func (a *App) AcceptTransferHandler(c *gin.Context) {
	eventID := c.Param("id")
	userID, _ := identity(c)
	ctx := c.Request.Context()

	// Patch local notification state first so the prompt cannot flash again
	// while the write is in flight; if the write fails, the next poll cycle
	// restores the entry and the error below is the retry affordance.
	if err := a.Sessions.Resolve(ctx, userID, eventID); err != nil {
		writeError(c, err)
		return
	}

	ev, err := a.Coordinator.Accept(ctx, eventID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// POST /api/events/:id/reject
func (a *App) RejectTransferHandler(c *gin.Context) {
	eventID := c.Param("id")
	userID, _ := identity(c)
	ctx := c.Request.Context()

	if err := a.Sessions.Resolve(ctx, userID, eventID); err != nil {
		writeError(c, err)
		return
	}

	ev, err := a.Coordinator.Reject(ctx, eventID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// POST /api/events/:id/takeover
func (a *App) TakeoverHandler(c *gin.Context) {
	eventID := c.Param("id")
	userID, _ := identity(c)
	ctx := c.Request.Context()

	if err := a.Sessions.Resolve(ctx, userID, eventID); err != nil {
		writeError(c, err)
		return
	}

	ev, err := a.Coordinator.Takeover(ctx, eventID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

type statusChangeReq struct {
	Status   string  `json:"status" binding:"required"`
	City     *string `json:"city,omitempty"`
	Assignee *string `json:"user_id,omitempty"`
}

// POST /api/events/:id/status
func (a *App) RequestStatusHandler(c *gin.Context) {
	eventID := c.Param("id")
	userID, role := identity(c)

	var req statusChangeReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := a.Coordinator.RequestTransition(c.Request.Context(), transfer.TransitionRequest{
		EventID:  eventID,
		ActorID:  userID,
		Role:     role,
		Target:   event.Status(req.Status),
		City:     req.City,
		Assignee: req.Assignee,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// POST /api/session
func (a *App) OpenSessionHandler(c *gin.Context) {
	userID, _ := identity(c)
	a.Sessions.Open(userID)
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// DELETE /api/session
func (a *App) CloseSessionHandler(c *gin.Context) {
	userID, _ := identity(c)
	a.Sessions.Close(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/notifications
func (a *App) NotificationsHandler(c *gin.Context) {
	userID, _ := identity(c)
	p, ok := a.Sessions.Poller(userID)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no open session"})
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

// POST /api/notifications/:id/dismiss
func (a *App) DismissNotificationHandler(c *gin.Context) {
	notificationID := c.Param("id")
	userID, _ := identity(c)
	ctx := c.Request.Context()

	if p, ok := a.Sessions.Poller(userID); ok {
		if err := p.Dismiss(ctx, notificationID); err != nil {
			writeError(c, err)
			return
		}
	} else if err := a.Ledger.MarkSeen(ctx, userID, notificationID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
