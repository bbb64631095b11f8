package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"feltengine/internal/tournament"
)

// AdminServer wires the spec §6.3 admin control surface. Grounded on
// original_source's routes/admin.py: HTTP Basic auth gating every
// route, start/pause/resume/reset/kick, and an admin websocket feed.
type AdminServer struct {
	coord    *tournament.Coordinator
	hub      *Hub
	password string
}

func NewAdminServer(coord *tournament.Coordinator, hub *Hub, password string) *AdminServer {
	return &AdminServer{coord: coord, hub: hub, password: password}
}

func (s *AdminServer) requireAuth(c *gin.Context) bool {
	_, password, ok := c.Request.BasicAuth()
	if !ok || subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		c.Header("WWW-Authenticate", `Basic realm="admin"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin credentials"})
		return false
	}
	return true
}

func (s *AdminServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.requireAuth(c) {
			return
		}
		c.Next()
	}
}

func (s *AdminServer) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Snapshot())
}

func (s *AdminServer) players(c *gin.Context) {
	list := s.coord.PlayerList()
	c.JSON(http.StatusOK, gin.H{"players": list, "total": len(list)})
}

func (s *AdminServer) tables(c *gin.Context) {
	states := s.coord.TableStates()
	c.JSON(http.StatusOK, gin.H{"tables": states, "total": len(states)})
}

func (s *AdminServer) start(c *gin.Context) {
	if err := s.coord.Start(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "tournament started"})
}

func (s *AdminServer) pause(c *gin.Context) {
	if err := s.coord.Pause(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "tournament paused"})
}

func (s *AdminServer) resume(c *gin.Context) {
	if err := s.coord.Resume(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "tournament resumed"})
}

func (s *AdminServer) reset(c *gin.Context) {
	if err := s.coord.Reset(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "tournament reset"})
}

func (s *AdminServer) kick(c *gin.Context) {
	playerID := c.Param("playerId")
	if err := s.coord.Kick(playerID); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "player kicked"})
}

func (s *AdminServer) removePlayer(c *gin.Context) {
	playerID := c.Param("playerId")
	username, err := s.coord.Deregister(playerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "player " + username + " removed"})
}

type broadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *AdminServer) broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.hub.BroadcastToViewers(envelopeOf("admin_message", gin.H{"message": req.Message}))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "broadcast sent"})
}

func (s *AdminServer) websocket(c *gin.Context) {
	if !s.requireAuth(c) {
		return
	}
	conn, err := upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	defer conn.Close()

	s.hub.AddAdmin(conn)
	defer s.hub.RemoveAdmin(conn)

	writeJSONMessage(conn, "status", s.coord.Snapshot())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *AdminServer) Register(router gin.IRouter) {
	group := router.Group("/admin", s.authMiddleware())
	group.GET("/status", s.status)
	group.GET("/players", s.players)
	group.GET("/tables", s.tables)
	group.POST("/start", s.start)
	group.POST("/pause", s.pause)
	group.POST("/resume", s.resume)
	group.POST("/reset", s.reset)
	group.POST("/kick/:playerId", s.kick)
	group.DELETE("/player/:playerId", s.removePlayer)
	group.POST("/broadcast", s.broadcast)

	// the websocket handshake needs basic auth checked manually since
	// it can't go through the JSON-response middleware chain cleanly.
	router.GET("/admin/ws", s.websocket)
}
