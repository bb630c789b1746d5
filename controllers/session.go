package controllers

import (
	"log"
	"net/http"
	"time"

	"nebula-backend/services"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// SessionService is the part of services.SessionManager the handlers use.
type SessionService interface {
	StartSession(userID string, minutes int) (services.TimerState, error)
	StopSession(userID string) (services.TimerState, error)
	State(userID string) services.TimerState
	Subscribe(userID string) (<-chan services.SessionUpdate, func())
}

type SessionController struct {
	Sessions       SessionService
	AllowedOrigins []string
}

type StartSessionInput struct {
	Duration int `json:"duration" binding:"required"`
}

func (sc *SessionController) StartSession(c *gin.Context) {
	userID, _, _, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input StartSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	state, err := sc.Sessions.StartSession(userID, input.Duration)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Treatment session started", "state": state})
}

func (sc *SessionController) StopSession(c *gin.Context) {
	userID, _, _, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	state, err := sc.Sessions.StopSession(userID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Treatment session stopped", "state": state})
}

func (sc *SessionController) GetSession(c *gin.Context) {
	userID, _, _, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "state": sc.Sessions.State(userID)})
}

// StreamSession upgrades to a websocket and pushes every timer update for the
// caller until either side hangs up.
func (sc *SessionController) StreamSession(c *gin.Context) {
	userID, _, _, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     sc.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed for user %s: %v", userID, err)
		return
	}

	updates, release := sc.Sessions.Subscribe(userID)
	log.Printf("[WS] Session stream opened for user %s", userID)

	go readUntilClosed(conn, release)
	writeUpdates(conn, updates, services.SessionUpdate{Type: "state", State: sc.Sessions.State(userID)})
	release()
	log.Printf("[WS] Session stream closed for user %s", userID)
}

func (sc *SessionController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range sc.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// readUntilClosed drains client frames so pongs and close frames are handled.
func readUntilClosed(conn *websocket.Conn, release func()) {
	defer release()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close: %v", err)
			}
			return
		}
	}
}

func writeUpdates(conn *websocket.Conn, updates <-chan services.SessionUpdate, first services.SessionUpdate) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(first); err != nil {
		return
	}

	for {
		select {
		case u, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				log.Printf("[WS] Write error: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrSessionActive):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoSession):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Session error")
	}
}
