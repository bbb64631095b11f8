package api

import (
	"github.com/gin-gonic/gin"

	"feltengine/internal/tournament"
)

// NewRouter assembles the gin engine serving all three API surfaces
// over the same hub, mirroring the teacher's single-router
// cmd/game-server/main.go composition.
func NewRouter(coord *tournament.Coordinator, hub *Hub, adminPassword string) *gin.Engine {
	router := gin.Default()

	NewBotServer(coord, hub).Register(router)
	NewAdminServer(coord, hub, adminPassword).Register(router)
	NewViewerServer(coord, hub).Register(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
