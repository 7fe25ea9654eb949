package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationID_OrderIndependent(t *testing.T) {
	assert.Equal(t, ConversationID("u1", "support"), ConversationID("support", "u1"))
	assert.Equal(t, "support:u1", ConversationID("u1", "support"))
}

// chatServer upgrades connections and echoes every received message back,
// stamping the sender.
func chatServer(t *testing.T) (*httptest.Server, *string) {
	t.Helper()
	var connectedUser string
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connectedUser = r.URL.Query().Get("user")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			msg.SenderID = "support"
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &connectedUser
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketMessenger_ConnectSendReceive(t *testing.T) {
	srv, connectedUser := chatServer(t)
	m := NewWebsocketMessenger(wsURL(srv))

	received := make(chan Message, 1)
	m.OnMessage(func(msg Message) { received <- msg })

	require.NoError(t, m.Connect(context.Background(), "u1"))
	defer m.Disconnect()
	assert.Equal(t, "u1", *connectedUser)

	conversation := ConversationID("u1", "support")
	require.NoError(t, m.SendMessage(context.Background(), conversation, "is this in stock?"))

	select {
	case msg := <-received:
		assert.Equal(t, conversation, msg.ConversationID)
		assert.Equal(t, "is this in stock?", msg.Text)
		assert.Equal(t, "support", msg.SenderID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message dispatched to the handler")
	}
}

func TestWebsocketMessenger_SendBeforeConnectFails(t *testing.T) {
	m := NewWebsocketMessenger("ws://chat.invalid/ws")

	err := m.SendMessage(context.Background(), "c1", "hello")

	require.Error(t, err)
}

func TestWebsocketMessenger_DisconnectStopsDispatch(t *testing.T) {
	srv, _ := chatServer(t)
	m := NewWebsocketMessenger(wsURL(srv))

	received := make(chan Message, 1)
	m.OnMessage(func(msg Message) { received <- msg })
	require.NoError(t, m.Connect(context.Background(), "u1"))

	require.NoError(t, m.Disconnect())

	// The connection is gone, sends fail and nothing is dispatched.
	require.Error(t, m.SendMessage(context.Background(), "c1", "hello"))
	select {
	case <-received:
		t.Fatal("handler fired after disconnect")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebsocketMessenger_DisconnectWithoutConnectIsNoop(t *testing.T) {
	m := NewWebsocketMessenger("ws://chat.invalid/ws")

	assert.NoError(t, m.Disconnect())
}
