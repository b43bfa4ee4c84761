package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/autojack/internal/controller"
	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type testEnv struct {
	ctrl  *controller.Controller
	clock *quartz.Mock
	srv   *Server
	http  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := quartz.NewMock(t)
	ctrl := controller.New(controller.Config{
		NewShoe: func() *deck.Shoe {
			cards := deck.MustParseCards("10s 6h 10d 7c 3h")
			slices.Reverse(cards)
			return deck.NewShoeFromCards(cards)
		},
		Policy:    game.FixedBet(10),
		SessionID: "test",
	}, clock, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", ctrl, testLogger())
	srv.Start(ctx)
	hs := httptest.NewServer(srv.Routes())

	t.Cleanup(func() {
		ctrl.Stop()
		cancel()
		hs.Close()
	})

	return &testEnv{ctrl: ctrl, clock: clock, srv: srv, http: hs}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readState reads until a state message satisfying match arrives
func readState(t *testing.T, conn *websocket.Conn, match func(controller.Snapshot) bool) controller.Snapshot {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeState {
			continue
		}
		var snap controller.Snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &snap))
		if match(snap) {
			return snap
		}
	}
	t.Fatal("no matching state message")
	return controller.Snapshot{}
}

func sendCommand(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()
	msg := Message{Type: typ, Timestamp: time.Now(), RequestID: "req-1"}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.http.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap controller.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, game.StateInitial, snap.State)
	assert.True(t, snap.Wallet.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, game.IdleStatus, snap.Status)
	assert.Equal(t, "test", snap.Session)
}

func TestAutoPlayEndpoint(t *testing.T) {
	env := newTestEnv(t)

	post := func(query string) (int, AutoPlayData) {
		resp, err := http.Post(env.http.URL+"/autoplay"+query, "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		var data AutoPlayData
		_ = json.NewDecoder(resp.Body).Decode(&data)
		return resp.StatusCode, data
	}

	status, data := post("")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, data.AutoPlay)
	assert.Equal(t, game.StatePlayer, env.ctrl.Snapshot().State)

	status, data = post("?on=false")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, data.AutoPlay)

	status, _ = post("?on=maybe")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.ctrl.AutoPlay())
}

func TestResetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.ctrl.ToggleAutoPlay()

	resp, err := http.Post(env.http.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap controller.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, game.StateInitial, snap.State)
	assert.False(t, snap.AutoPlay)
	assert.True(t, snap.Wallet.Equal(decimal.NewFromInt(1000)))
}

func TestWebSocketReceivesInitialState(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	snap := readState(t, conn, func(controller.Snapshot) bool { return true })
	assert.Equal(t, game.StateInitial, snap.State)
	assert.False(t, snap.AutoPlay)
}

func TestWebSocketCommands(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readState(t, conn, func(controller.Snapshot) bool { return true })

	sendCommand(t, conn, MessageTypeToggleAutoPlay, nil)
	snap := readState(t, conn, func(s controller.Snapshot) bool { return s.AutoPlay })
	assert.Equal(t, game.StatePlayer, snap.State)
	assert.Equal(t, 10, snap.Bet)
	assert.True(t, snap.Dealer.HideFirstCard)

	sendCommand(t, conn, MessageTypeSetAutoPlay, SetAutoPlayData{On: false})
	readState(t, conn, func(s controller.Snapshot) bool { return !s.AutoPlay })

	sendCommand(t, conn, MessageTypeReset, nil)
	snap = readState(t, conn, func(s controller.Snapshot) bool { return s.State == game.StateInitial })
	assert.Equal(t, 0, snap.Bet)
}

func TestWebSocketRejectsUnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readState(t, conn, func(controller.Snapshot) bool { return true })

	sendCommand(t, conn, MessageType("hit_me"), nil)

	msg := readMessage(t, conn)
	for msg.Type == MessageTypeState {
		msg = readMessage(t, conn)
	}
	require.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "req-1", msg.RequestID)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "unknown_message", data.Code)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	env := newTestEnv(t)
	a := env.dial(t)
	b := env.dial(t)
	readState(t, a, func(controller.Snapshot) bool { return true })
	readState(t, b, func(controller.Snapshot) bool { return true })

	require.Eventually(t, func() bool { return env.srv.ConnectionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	env.ctrl.ToggleAutoPlay()

	for _, conn := range []*websocket.Conn{a, b} {
		snap := readState(t, conn, func(s controller.Snapshot) bool { return s.AutoPlay })
		assert.Equal(t, game.StatePlayer, snap.State)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readState(t, conn, func(controller.Snapshot) bool { return true })
	require.Eventually(t, func() bool { return env.srv.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.srv.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: "x", Message: "y"})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.JSONEq(t, `{"code":"x","message":"y"}`, string(msg.Data))
	assert.False(t, msg.Timestamp.IsZero())

	_, err = NewMessage(MessageTypeState, make(chan int))
	assert.Error(t, err)
}
