package sandbox

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/internal/status"
)

const notificationRead = "READ"

// notificationList returns the caller's notifications, newest first. Read ones are
// included only with includeRead=1.
func (s *Server) notificationList(c *gin.Context) {
	userUID := c.GetString(middleware.KeyUserID)
	includeRead := c.Query("includeRead") == "1" || c.Query("includeRead") == "true"

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var mine []*notification
	for _, n := range s.store.notifications {
		if n.UserUID != userUID {
			continue
		}
		if !includeRead && !status.NotificationUnread(n.Status) {
			continue
		}
		mine = append(mine, n)
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	items := make([]gin.H, 0, len(mine))
	for _, n := range mine {
		items = append(items, gin.H{
			"id":         n.ID,
			"channel":    n.Channel,
			"type":       n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"status":     n.Status,
			"created_at": n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) markRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Notification id must be numeric.")
		return
	}
	userUID := c.GetString(middleware.KeyUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, n := range s.store.notifications {
		if n.ID == id && n.UserUID == userUID {
			n.Status = notificationRead
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found.")
}

func (s *Server) markAllRead(c *gin.Context) {
	userUID := c.GetString(middleware.KeyUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	updated := 0
	for _, n := range s.store.notifications {
		if n.UserUID == userUID && status.NotificationUnread(n.Status) {
			n.Status = notificationRead
			updated++
		}
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
