package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"feltengine/internal/tournament"
)

// ViewerServer is the unauthenticated public spectator surface (spec
// §6.4), grounded on original_source's routes/viewer.py: public
// status, hole-card-redacted table states, a chip leaderboard, and a
// read-mostly websocket feed.
type ViewerServer struct {
	coord *tournament.Coordinator
	hub   *Hub
}

func NewViewerServer(coord *tournament.Coordinator, hub *Hub) *ViewerServer {
	return &ViewerServer{coord: coord, hub: hub}
}

func (s *ViewerServer) status(c *gin.Context) {
	snap := s.coord.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":             snap["status"],
		"registered_players": snap["registered_players"],
		"remaining_players":  snap["remaining_players"],
		"active_tables":      snap["active_tables"],
		"hands_played":       snap["hands_played"],
		"current_blinds":     snap["current_blinds"],
	})
}

func (s *ViewerServer) tables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.coord.TableStates()})
}

func (s *ViewerServer) leaderboard(c *gin.Context) {
	players := s.coord.PlayerList()

	type entry struct {
		Username string
		Chips    int64
		TableID  string
	}
	var ranked []entry
	for _, p := range players {
		chips, _ := p["chips"].(int64)
		if chips <= 0 {
			continue
		}
		tableID, _ := p["table_id"].(string)
		username, _ := p["username"].(string)
		ranked = append(ranked, entry{Username: username, Chips: chips, TableID: tableID})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Chips > ranked[j].Chips })

	out := make([]gin.H, 0, len(ranked))
	for i, e := range ranked {
		out = append(out, gin.H{
			"position": i + 1,
			"username": e.Username,
			"chips":    e.Chips,
			"table_id": e.TableID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (s *ViewerServer) websocket(c *gin.Context) {
	conn, err := upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	defer conn.Close()

	s.hub.AddViewer(conn)
	defer s.hub.RemoveViewer(conn)

	writeJSONMessage(conn, "connected", gin.H{
		"tournament_status": s.coord.Snapshot(),
		"tables":            s.coord.TableStates(),
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(raw) == "ping" {
			writeJSONMessage(conn, "pong", nil)
		}
	}
}

func (s *ViewerServer) Register(router gin.IRouter) {
	router.GET("/viewer/status", s.status)
	router.GET("/viewer/tables", s.tables)
	router.GET("/viewer/leaderboard", s.leaderboard)
	router.GET("/viewer/ws", s.websocket)
}
