// Package web provides API routes for the web server.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/gin-gonic/gin"
)

// ActionReader is the read side of the action log. *actionlog.Store satisfies it.
type ActionReader interface {
	Ping(ctx context.Context) error
	SelectByID(ctx context.Context, id int64) (*models.ActionRecord, error)
	SelectByUser(ctx context.Context, guildID, userID string) ([]models.ActionRecord, error)
	SelectAttachments(ctx context.Context, actionID int64) ([]models.AttachmentRecord, error)
}

// SetupAPIRoutes sets up the API routes. Hidden actions are never served.
func SetupAPIRoutes(s *Server, actions ActionReader) {
	h := &apiHandlers{actions: actions}

	api := s.Group("/api")
	{
		api.GET("/status", h.statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
		api.GET("/actions/:id", h.actionHandler)
		api.GET("/users/:id/actions", h.userActionsHandler)
	}
}

type apiHandlers struct {
	actions ActionReader
}

// statusHandler returns the bot and database status
func (h *apiHandlers) statusHandler(c *gin.Context) {
	levels := gin.H{"status": "No configurado", "isOnline": false}
	if db := database.Get(); db != nil {
		status, online := db.GetStatus()
		levels = gin.H{"status": status, "isOnline": online}
	}

	actionsOnline := h.actions != nil && h.actions.Ping(c.Request.Context()) == nil

	botOnline := false
	if client := discord.Get(); client != nil {
		botOnline = client.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": levels,
		"actions": gin.H{
			"isOnline": actionsOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyMod Go is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   client.GuildCount(),
		"isReady":  client.IsReady(),
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not Found",
		"message": "La acción solicitada no existe.",
		"status":  404,
	})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": "No se pudo consultar el registro de acciones.",
		"status":  500,
	})
}

// actionHandler returns one action with its attachments
func (h *apiHandlers) actionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "El id debe ser un número positivo.",
			"status":  400,
		})
		return
	}

	ctx := c.Request.Context()
	rec, err := h.actions.SelectByID(ctx, id)
	if errors.Is(err, actionlog.ErrNotFound) || (err == nil && rec.Hidden) {
		notFound(c)
		return
	}
	if err != nil {
		internalError(c)
		return
	}

	attachments, err := h.actions.SelectAttachments(ctx, id)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":      rec,
		"attachments": attachments,
	})
}

// userActionsHandler lists the visible actions against a user, newest first.
// ?guild= restricts the search to one guild.
func (h *apiHandlers) userActionsHandler(c *gin.Context) {
	records, err := h.actions.SelectByUser(c.Request.Context(), c.Query("guild"), c.Param("id"))
	if err != nil {
		internalError(c)
		return
	}

	visible := make([]models.ActionRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Hidden {
			visible = append(visible, rec)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":  c.Param("id"),
		"total":   len(visible),
		"actions": visible,
	})
}
