// Package web provides API routes for the web server.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Hooks lets the bot react to changes made through the API. Every method is optional.
type Hooks interface {
	WarnRegistered(guildID string, res warn.Result)
	WarnRemoved(id int64)
	SubjectCleared(subjectID string, removed int)
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Engine   *warn.Engine
	Backend  database.Maintenance
	Hooks    Hooks
	APIToken string
	Now      func() time.Time
}

type api struct {
	Deps
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	a := &api{Deps: deps}

	s.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.Group("/api")
	{
		apiGroup.GET("/status", a.statusHandler)
		apiGroup.GET("/health", healthHandler)
		apiGroup.GET("/bot", botInfoHandler)
	}

	warns := apiGroup.Group("/warns", bearerAuth(deps.APIToken))
	{
		warns.GET("/policy", policyHandler)
		warns.POST("", a.registerHandler)
		warns.POST("/purge", a.purgeHandler)
		warns.DELETE("/id/:id", a.removeHandler)
		warns.GET("/:subject", a.activeHandler)
		warns.GET("/:subject/count", a.countHandler)
		warns.GET("/:subject/history", a.historyHandler)
		warns.DELETE("/:subject", a.clearHandler)
	}
}

// bearerAuth guards the warn API. An empty token disables the API.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "API Disabled",
				"message": "La API de advertencias no está configurada.",
			})
			return
		}

		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Token inválido.",
			})
			return
		}
		c.Next()
	}
}

// statusHandler returns the bot and database status
func (a *api) statusHandler(c *gin.Context) {
	client := discord.Get()

	dbStatus, dbOnline := "🔴 | Desconectado", false
	var latency time.Duration
	if a.Backend != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d, err := a.Backend.Ping(ctx); err == nil {
			dbStatus, dbOnline, latency = "🟢 | En linea", true, d
		}
	}

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	dbInfo := gin.H{
		"status":    dbStatus,
		"isOnline":  dbOnline,
		"latencyMs": latency.Milliseconds(),
	}
	if a.Backend != nil {
		dbInfo["backend"] = a.Backend.Name()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": dbInfo,
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyWarn Go is running",
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
		"id":            user.ID,
		"username":      user.Username,
		"discriminator": user.Discriminator,
		"avatar":        user.Avatar,
		"guilds":        client.GuildCount(),
		"isReady":       client.IsReady(),
	})
}

type ladderStep struct {
	Count         int    `json:"count"`
	Expiry        string `json:"expiry"`
	ExpirySeconds int64  `json:"expirySeconds"`
	Action        string `json:"action"`
	Description   string `json:"description"`
}

func policyHandler(c *gin.Context) {
	steps := make([]ladderStep, 0, warn.BanThreshold)
	for n := 1; n <= warn.BanThreshold; n++ {
		action := warn.PunishmentFor(n)
		steps = append(steps, ladderStep{
			Count:         n,
			Expiry:        warn.HumanDuration(warn.ExpiryOffset(n)),
			ExpirySeconds: int64(warn.ExpiryOffset(n) / time.Second),
			Action:        action.String(),
			Description:   action.Description(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"banThreshold":    warn.BanThreshold,
		"maxReasonLength": warn.MaxReasonLength,
		"ladder":          steps,
	})
}

type registerRequest struct {
	SubjectID string  `json:"subjectId"`
	IssuerID  *string `json:"issuerId"`
	Reason    string  `json:"reason"`
	GuildID   string  `json:"guildId"`
}

func (a *api) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
		return
	}

	res, err := a.Engine.RegisterWarn(c.Request.Context(), req.SubjectID, req.IssuerID, req.Reason, a.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	if a.Hooks != nil {
		a.Hooks.WarnRegistered(req.GuildID, res)
	}

	c.JSON(http.StatusCreated, gin.H{
		"warn":        res.Warn,
		"activeCount": res.ActiveCount,
		"action":      res.Action.String(),
		"description": res.Action.Description(),
		"punished":    req.GuildID != "" && res.Action.Kind != warn.PunishmentNone,
	})
}

func (a *api) activeHandler(c *gin.Context) {
	warns, err := a.Engine.GetActiveWarns(c.Request.Context(), c.Param("subject"), a.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjectId": c.Param("subject"), "warns": nonNil(warns)})
}

func (a *api) countHandler(c *gin.Context) {
	n, err := a.Engine.CountActiveWarns(c.Request.Context(), c.Param("subject"), a.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subjectId":   c.Param("subject"),
		"activeCount": n,
		"nextAction":  warn.PunishmentFor(n + 1).String(),
	})
}

func (a *api) historyHandler(c *gin.Context) {
	warns, err := a.Engine.GetWarnHistory(c.Request.Context(), c.Param("subject"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjectId": c.Param("subject"), "warns": nonNil(warns)})
}

func (a *api) removeHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": "id inválido"})
		return
	}

	removed, err := a.Engine.RemoveWarn(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if removed && a.Hooks != nil {
		a.Hooks.WarnRemoved(id)
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "removed": removed})
}

func (a *api) clearHandler(c *gin.Context) {
	subject := c.Param("subject")
	n, err := a.Engine.ClearSubject(c.Request.Context(), subject)
	if err != nil {
		writeError(c, err)
		return
	}
	if a.Hooks != nil {
		a.Hooks.SubjectCleared(subject, n)
	}
	c.JSON(http.StatusOK, gin.H{"subjectId": subject, "removed": n})
}

func (a *api) purgeHandler(c *gin.Context) {
	n, err := a.Engine.PurgeExpired(c.Request.Context(), a.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, warn.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Input", "message": err.Error()})
	case errors.Is(err, warn.ErrPersistence):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Persistence Error", "message": "No se pudo acceder al almacén de advertencias."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
