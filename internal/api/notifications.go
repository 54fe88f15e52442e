package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/audit"
	"github.com/cascadehq/cascade/internal/notify"
)

func (s *Server) handleListNotifications(c *gin.Context) {
	actor := currentActor(c)
	ns, meta, err := notify.List(s.DB, actor.ID, c.Query("unread") == "true", pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ns, "pagination": meta})
}

func (s *Server) handleMarkNotificationRead(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := notify.MarkRead(s.DB, id, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

func (s *Server) handleMarkAllNotificationsRead(c *gin.Context) {
	n, err := notify.MarkAllRead(s.DB, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

func (s *Server) handleAuditTrail(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	entries, err := audit.ForEntity(s.DB, c.Param("entity"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
