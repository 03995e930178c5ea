package ws

import (
	"net/http"
	"strings"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/logger"
	"memberhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	session  *auth.SessionService
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows
// any origin.
func NewWebSocketHandler(manager *WebSocketManager, session *auth.SessionService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS godoc
// @Summary      Notification stream
// @Description  Upgrades to a websocket that pushes membership, opportunity and application events for the caller. The token may be passed as a bearer header or as the token query parameter.
// @Tags         websocket
// @Param        token  query  string  false  "Access token"
// @Success      101
// @Failure      401  {object}  apperrors.AppError
// @Router       /ws [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	token, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization token required"))
		return
	}

	identity, err := h.session.Authenticate(c.Request.Context(), token)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Websocket upgrade failed", err)
		return
	}

	client := newClient(identity.UserID, conn, h.Manager)
	select {
	case h.Manager.register <- client:
	case <-h.Manager.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}
