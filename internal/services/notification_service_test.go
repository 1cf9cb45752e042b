package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boundless-travel/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialNotifications(t *testing.T, svc *NotificationService, account string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc.HandleWebSocket(w, r, account)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPush(t *testing.T, conn *websocket.Conn) PushMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg PushMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestNotificationDeliversMintUpdate(t *testing.T) {
	svc := NewNotificationService(nil)
	defer svc.Close()

	conn := dialNotifications(t, svc, testAccount)
	hello := readPush(t, conn)
	assert.Equal(t, PushTypeConnectionEstablished, hello.Type)
	assert.Equal(t, 1, svc.UserConnections(strings.ToLower(testAccount)))

	svc.NotifyMintAttempt(&models.MintAttempt{
		ID:      "attempt-1",
		Account: testAccount,
		Outcome: models.MintOutcomeSubmitted,
	})

	msg := readPush(t, conn)
	assert.Equal(t, PushTypeMintUpdate, msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, mintOutcomeMessages[models.MintOutcomeSubmitted], data["user_message"])
}

func TestNotificationIgnoresOtherAccounts(t *testing.T) {
	svc := NewNotificationService(nil)
	defer svc.Close()

	conn := dialNotifications(t, svc, testAccount)
	readPush(t, conn)

	svc.NotifyMintAttempt(&models.MintAttempt{ID: "x", Account: testInviter, Outcome: models.MintOutcomeFailed})
	svc.NotifyMintAttempt(nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.vizing.com/"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://app.vizing.com")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker(nil)(r))
}
