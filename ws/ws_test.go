package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/roles"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*WebSocketManager, *auth.TokenService, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("ws-secret", "memberhub-test", time.Minute)
	manager := NewWebSocketManager()
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)

	handler := NewWebSocketHandler(manager, auth.NewSessionService(tokens, nil), []string{"https://app.example.test"})
	router := gin.New()
	router.GET("/ws", handler.ServeWS)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-manager.Done()
	})
	return manager, tokens, server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSRequiresToken(t *testing.T) {
	_, _, server := newTestHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server)+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSRejectsForeignOrigin(t *testing.T) {
	_, tokens, server := newTestHub(t)
	token, _, err := tokens.GenerateAccessToken(auth.Identity{UserID: "user-1"})
	require.NoError(t, err)

	header := http.Header{"Origin": []string{"https://evil.example.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNotifyReachesEveryConnectionOfTheUser(t *testing.T) {
	manager, tokens, server := newTestHub(t)
	token, _, err := tokens.GenerateAccessToken(auth.Identity{UserID: "user-1", Roles: roles.NewSet(roles.Employer)})
	require.NoError(t, err)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	first, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	require.NoError(t, err)
	defer second.Close()

	waitFor(t, func() bool { return manager.ClientCount() == 2 })
	assert.True(t, manager.IsUserConnected("user-1"))

	manager.Notify("someone-else", "application.received", nil)
	manager.Notify("user-1", "membership.reviewed", map[string]string{"approval_status": "approved"})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "membership.reviewed", event.Type)
		assert.Equal(t, map[string]interface{}{"approval_status": "approved"}, event.Payload)
	}
}

func TestPingGetsPong(t *testing.T) {
	manager, tokens, server := newTestHub(t)
	token, _, err := tokens.GenerateAccessToken(auth.Identity{UserID: "user-2"})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return manager.IsUserConnected("user-2") })

	require.NoError(t, conn.WriteJSON(IncomingWSMessage{Action: "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "pong", event.Type)
}

func TestDisconnectUnregisters(t *testing.T) {
	manager, tokens, server := newTestHub(t)
	token, _, err := tokens.GenerateAccessToken(auth.Identity{UserID: "user-3"})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	require.NoError(t, err)
	waitFor(t, func() bool { return manager.IsUserConnected("user-3") })

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	waitFor(t, func() bool { return !manager.IsUserConnected("user-3") })
}
