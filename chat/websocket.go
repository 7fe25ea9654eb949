package chat

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// WebsocketMessenger is the production Messenger over a websocket
// endpoint.
type WebsocketMessenger struct {
	endpoint string

	mu      sync.Mutex
	conn    *websocket.Conn
	handler func(Message)
	done    chan struct{}
}

// NewWebsocketMessenger creates a messenger for the provider at endpoint
// (e.g. "ws://chat.internal/ws").
func NewWebsocketMessenger(endpoint string) *WebsocketMessenger {
	return &WebsocketMessenger{endpoint: endpoint}
}

// Connect dials the provider as userID and starts dispatching incoming
// messages to the registered handler.
func (m *WebsocketMessenger) Connect(ctx context.Context, userID string) error {
	u, err := url.Parse(m.endpoint)
	if err != nil {
		return errors.Wrap(err, "chat endpoint")
	}
	q := u.Query()
	q.Set("user", userID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "dial chat provider")
	}

	m.mu.Lock()
	m.conn = conn
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.readLoop(conn)
	return nil
}

func (m *WebsocketMessenger) readLoop(conn *websocket.Conn) {
	defer close(m.done)
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		m.mu.Lock()
		handler := m.handler
		m.mu.Unlock()
		if handler != nil {
			handler(msg)
		}
	}
}

// SendMessage writes one message into a conversation.
func (m *WebsocketMessenger) SendMessage(ctx context.Context, conversationID, text string) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return errors.New("chat: not connected")
	}
	return conn.WriteJSON(Message{ConversationID: conversationID, Text: text})
}

// OnMessage registers the message listener, replacing any previous one.
func (m *WebsocketMessenger) OnMessage(fn func(Message)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
}

// Disconnect detaches the listener, closes the connection and waits for
// the read loop to stop.
func (m *WebsocketMessenger) Disconnect() error {
	m.mu.Lock()
	conn := m.conn
	done := m.done
	m.conn = nil
	m.handler = nil
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	if done != nil {
		<-done
	}
	return err
}
