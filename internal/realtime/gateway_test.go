package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/config"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	AckID string          `json:"ackId"`
}

type testEnv struct {
	tokens  *auth.TokenService
	gateway *Gateway
	server  *httptest.Server
}

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	})
	require.NoError(t, err)
	return tokens
}

func newTestEnv(t *testing.T, tokens *auth.TokenService, broker Broker) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := NewGateway(auth.NewAuthenticator(tokens), broker, []string{"http://localhost:5173"})
	require.NoError(t, gw.Start(context.Background()))

	r := gin.New()
	r.GET("/ws", gw.ServeWS)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		_ = gw.Close()
	})
	return &testEnv{tokens: tokens, gateway: gw, server: srv}
}

func newUser(name string) *domainUser.User {
	return &domainUser.User{
		ID:       uuid.New(),
		Username: name,
		FullName: strings.ToUpper(name[:1]) + name[1:],
		Email:    name + "@example.com",
		Role:     domainUser.RoleUser,
	}
}

func (e *testEnv) wsURL() string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
}

func (e *testEnv) dial(t *testing.T, u *domainUser.User) *websocket.Conn {
	t.Helper()
	token, _, err := e.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(e.wsURL()+"?token="+token, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return e.gateway.RoomSize(UserRoom(u.ID)) > 0
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any, ackID string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data, "ackId": ackID}))
}

func read(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f testFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	var f testFrame
	err := conn.ReadJSON(&f)
	require.Error(t, err, "unexpected frame %s", f.Event)
}

func joinRoom(t *testing.T, gw *Gateway, conn *websocket.Conn, convID string, members int) {
	t.Helper()
	send(t, conn, EventJoin, map[string]any{"conversationId": convID}, "")
	require.Eventually(t, func() bool {
		return gw.RoomSize(ConversationRoom(convID)) == members
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandshake_Rejected(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"no token", "", "UNAUTHENTICATED"},
		{"garbage token", "?token=not-a-jwt", "UNAUTHENTICATED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(env.wsURL()+tt.query, nil)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			var body struct {
				Success bool   `json:"success"`
				Code    string `json:"code"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	assert.EqualValues(t, 2, env.gateway.Stats().HandshakesRejected)
	assert.Zero(t, env.gateway.Stats().ConnectionsOpened)
}

func TestHandshake_ExpiredToken(t *testing.T) {
	tokens := newTokenService(t)
	env := newTestEnv(t, tokens, nil)

	past := newTokenService(t).WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := past.IssueAccessToken(newUser("alice"))
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL()+"?token="+token, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshake_HeaderAndCookie(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)
	alice := newUser("alice")
	token, _, err := env.tokens.IssueAccessToken(alice)
	require.NoError(t, err)

	header := http.Header{"Authorization": []string{"bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(env.wsURL(), header)
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()

	header = http.Header{"Cookie": []string{auth.AccessTokenCookie + "=" + token}}
	conn, resp, err = websocket.DefaultDialer.Dial(env.wsURL(), header)
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()
}

func TestHandshake_ForeignOrigin(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)
	token, _, err := env.tokens.IssueAccessToken(newUser("alice"))
	require.NoError(t, err)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL()+"?token="+token, header)
	require.Error(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestConversationFlow(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)
	alice, bob := newUser("alice"), newUser("bob")

	aliceConn := env.dial(t, alice)
	bobConn := env.dial(t, bob)

	joinRoom(t, env.gateway, aliceConn, "42", 1)
	joinRoom(t, env.gateway, bobConn, "42", 2)

	f := read(t, aliceConn)
	assert.Equal(t, EventPresence, f.Event)
	assert.JSONEq(t, `{"conversationId":"42","userId":"`+bob.ID.String()+`","online":true}`, string(f.Data))

	// message: broadcast to the whole room, acked to the sender
	send(t, aliceConn, EventMessage, map[string]any{"conversationId": "42", "text": "  hi bob  "}, "a1")

	f = read(t, aliceConn)
	assert.Equal(t, EventMessage, f.Event)
	var msg Message
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, "hi bob", msg.Text)
	assert.Equal(t, alice.ID, msg.Sender)
	assert.Equal(t, "42", msg.ConversationID)
	assert.NotNil(t, msg.Attachments)

	ack := read(t, aliceConn)
	assert.Equal(t, EventAck, ack.Event)
	assert.Equal(t, "a1", ack.AckID)
	var acked Message
	require.NoError(t, json.Unmarshal(ack.Data, &acked))
	assert.Equal(t, msg.ID, acked.ID)

	f = read(t, bobConn)
	assert.Equal(t, EventMessage, f.Event)

	// typing and read receipts skip the sender
	send(t, bobConn, EventTyping, map[string]any{"conversationId": "42", "isTyping": 1}, "")
	f = read(t, aliceConn)
	assert.Equal(t, EventTyping, f.Event)
	assert.JSONEq(t, `{"conversationId":"42","userId":"`+bob.ID.String()+`","isTyping":true}`, string(f.Data))

	send(t, bobConn, EventRead, map[string]any{"conversationId": "42", "at": "2025-01-02T03:04:05Z"}, "")
	f = read(t, aliceConn)
	assert.Equal(t, EventRead, f.Event)
	assert.Contains(t, string(f.Data), `"at":"2025-01-02T03:04:05Z"`)
	expectSilence(t, bobConn)

	// empty messages and bad timestamps are dropped
	send(t, aliceConn, EventMessage, map[string]any{"conversationId": "42", "text": "   "}, "a2")
	send(t, aliceConn, EventRead, map[string]any{"conversationId": "42", "at": "yesterday"}, "")
	expectSilence(t, bobConn)

	// disconnect announces offline to the remaining members
	bobConn.Close()
	f = read(t, aliceConn)
	assert.Equal(t, EventPresence, f.Event)
	assert.JSONEq(t, `{"conversationId":"42","userId":"`+bob.ID.String()+`","online":false}`, string(f.Data))

	require.Eventually(t, func() bool {
		return env.gateway.Stats().ConnectionsActive == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLeave(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)
	alice, bob := newUser("alice"), newUser("bob")

	aliceConn := env.dial(t, alice)
	bobConn := env.dial(t, bob)

	joinRoom(t, env.gateway, aliceConn, "7", 1)
	joinRoom(t, env.gateway, bobConn, "7", 2)
	read(t, aliceConn) // bob online

	send(t, bobConn, EventLeave, map[string]any{"conversationId": 7}, "")
	f := read(t, aliceConn)
	assert.Equal(t, EventPresence, f.Event)
	assert.Contains(t, string(f.Data), `"online":false`)
	assert.Equal(t, 1, env.gateway.RoomSize(ConversationRoom("7")))

	send(t, aliceConn, EventMessage, map[string]any{"conversationId": "7", "text": "anyone?"}, "")
	read(t, aliceConn)
	expectSilence(t, bobConn)
}

func TestPublishPetEvent(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), nil)
	alice, bob := newUser("alice"), newUser("bob")

	aliceConn := env.dial(t, alice)
	bobConn := env.dial(t, bob)

	petID := uuid.New()
	event := events.New(events.PetStatusChanged, petID, alice.ID, bob.ID, "reserved")
	require.NoError(t, env.gateway.Publish(context.Background(), event))

	f := read(t, aliceConn)
	assert.Equal(t, EventPet, f.Event)
	var got events.Event
	require.NoError(t, json.Unmarshal(f.Data, &got))
	assert.Equal(t, petID, got.PetID)
	assert.Equal(t, "reserved", got.Status)

	expectSilence(t, bobConn)
}

type failingBroker struct {
	LocalBroker
}

func (b *failingBroker) Publish(ctx context.Context, env Envelope) error {
	if strings.Contains(string(env.Payload), `"event":"chat:message"`) {
		return assert.AnError
	}
	return b.LocalBroker.Publish(ctx, env)
}

func TestMessageSendFailure(t *testing.T) {
	env := newTestEnv(t, newTokenService(t), &failingBroker{})
	alice := newUser("alice")
	conn := env.dial(t, alice)

	joinRoom(t, env.gateway, conn, "9", 1)
	send(t, conn, EventMessage, map[string]any{"conversationId": "9", "text": "hello"}, "m1")

	ack := read(t, conn)
	assert.Equal(t, EventAck, ack.Event)
	assert.Equal(t, "m1", ack.AckID)
	assert.JSONEq(t, `{"error":"send_failed"}`, string(ack.Data))

	f := read(t, conn)
	assert.Equal(t, EventError, f.Event)
	assert.JSONEq(t, `{"message":"Failed to send message"}`, string(f.Data))
}

func TestConversationIDDecoding(t *testing.T) {
	var req roomRequest
	require.NoError(t, json.Unmarshal([]byte(`{"conversationId": 12}`), &req))
	assert.Equal(t, conversationID("12"), req.ConversationID)

	require.NoError(t, json.Unmarshal([]byte(`{"conversationId": "abc"}`), &req))
	assert.Equal(t, conversationID("abc"), req.ConversationID)

	assert.Error(t, json.Unmarshal([]byte(`{"conversationId": {}}`), &req))
}
