package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feltengine/internal/rules"
	"feltengine/internal/sink"
	"feltengine/internal/tournament"
)

// BotServer wires the spec §6.1 bot-facing API onto a coordinator and
// websocket hub. Grounded on original_source's routes/bot.py:
// register, X-API-Key-authenticated action submission, polling state,
// valid-actions, and a per-player websocket feed.
type BotServer struct {
	coord *tournament.Coordinator
	hub   *Hub
}

func NewBotServer(coord *tournament.Coordinator, hub *Hub) *BotServer {
	return &BotServer{coord: coord, hub: hub}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	TeamName string `json:"team_name"`
}

func (s *BotServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	player, err := s.coord.Register(req.Username, req.TeamName)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"player_id":     player.ID,
		"api_key":       player.Credential,
		"message":       "registered",
		"websocket_url": "/bot/ws/" + player.ID,
	})
}

// authenticate resolves the X-API-Key header to a player id, or aborts
// the request with 401.
func (s *BotServer) authenticate(c *gin.Context) (string, bool) {
	key := c.GetHeader("X-API-Key")
	playerID, err := s.coord.Authenticate(key)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
		return "", false
	}
	return playerID, true
}

type actionRequest struct {
	ActionType string `json:"action_type" binding:"required"`
	Amount     int64  `json:"amount"`
}

func (s *BotServer) submitAction(c *gin.Context) {
	playerID, ok := s.authenticate(c)
	if !ok {
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	actionType, ok := rules.ParseActionType(req.ActionType)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "unknown action_type"})
		return
	}

	err := s.coord.Dispatch(playerID, actionType, req.Amount)
	state, _ := s.coord.PlayerGameState(playerID)

	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error(), "game_state": state})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "applied",
		"action_accepted": req.ActionType,
		"game_state":      state,
	})
}

func (s *BotServer) getState(c *gin.Context) {
	playerID, ok := s.authenticate(c)
	if !ok {
		return
	}
	state, err := s.coord.PlayerGameState(playerID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":            "waiting",
			"message":           "not currently at a table",
			"tournament_status": s.coord.Status().String(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active", "game_state": state})
}

func (s *BotServer) getValidActions(c *gin.Context) {
	playerID, ok := s.authenticate(c)
	if !ok {
		return
	}
	actions, err := s.coord.ValidActions(playerID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid_actions": []rules.ValidAction{}, "message": "not at an active table"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player_id": playerID, "valid_actions": actions})
}

// websocket streams game_state envelopes to one bot and accepts
// action/ping frames in the same shape original_source's bot
// websocket expects.
func (s *BotServer) websocket(c *gin.Context) {
	playerID := c.Param("playerId")

	conn, err := upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	defer conn.Close()

	s.hub.AddPlayer(playerID, conn)
	defer s.hub.RemovePlayer(playerID)

	state, _ := s.coord.PlayerGameState(playerID)
	writeJSONMessage(conn, "connected", gin.H{
		"player_id":          playerID,
		"tournament_status":  s.coord.Status().String(),
		"game_state":         state,
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msgType, data, err := decodeInbound(raw)
		if err != nil {
			writeJSONMessage(conn, "error", gin.H{"message": "invalid JSON"})
			continue
		}

		switch msgType {
		case "action":
			var payload actionRequest
			if err := unmarshalInto(data, &payload); err != nil {
				writeJSONMessage(conn, "error", gin.H{"message": err.Error()})
				continue
			}
			actionType, ok := rules.ParseActionType(payload.ActionType)
			if !ok {
				writeJSONMessage(conn, "error", gin.H{"message": "unknown action_type"})
				continue
			}
			err := s.coord.Dispatch(playerID, actionType, payload.Amount)
			result := gin.H{"success": err == nil}
			if err != nil {
				result["message"] = err.Error()
			}
			writeJSONMessage(conn, "action_result", result)
		case "ping":
			writeJSONMessage(conn, "pong", nil)
		}
	}
}

func (s *BotServer) Register(router gin.IRouter) {
	router.POST("/bot/register", s.register)
	router.POST("/bot/action", s.submitAction)
	router.GET("/bot/state", s.getState)
	router.GET("/bot/valid-actions", s.getValidActions)
	router.GET("/bot/ws/:playerId", s.websocket)
}

var _ sink.ConnectionSink = (*Hub)(nil)
