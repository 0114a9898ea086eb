package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/fluff/internal/hub"
	"example.com/fluff/internal/types"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, Options{DefaultHandSize: 5}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func createRoom(t *testing.T, srv *httptest.Server, body string) createRoomResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+"/rooms", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out createRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=" + code
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "bye") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

// waitFor reads frames until one of the wanted type arrives. Acks and
// room broadcasts interleave without a fixed order, so tests match on
// type rather than position.
func waitFor(t *testing.T, conn *websocket.Conn, msgType string) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %q", msgType)
		var msg types.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateRoomReturnsLink(t *testing.T) {
	srv := newTestServer(t)
	out := createRoom(t, srv, "")

	assert.Len(t, out.RoomID, 6)
	assert.Contains(t, out.Link, "/?game="+out.RoomID)
}

func TestDialUnknownRoomFails(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=NOPE00"
	_, _, err := websocket.Dial(ctx, wsURL, nil)
	assert.Error(t, err)
}

func TestJoinAckAndLobbyUpdate(t *testing.T) {
	srv := newTestServer(t)
	out := createRoom(t, srv, "")
	conn := dial(t, srv, out.RoomID)

	send(t, conn, types.ClientMessage{Type: "join", Name: "Alice"})

	ack := waitFor(t, conn, "ack")
	var ap types.AckPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &ap))
	assert.True(t, ap.OK)

	lu := waitFor(t, conn, "lobby_update")
	var lp types.LobbyUpdatePayload
	require.NoError(t, json.Unmarshal(lu.Payload, &lp))
	require.Len(t, lp.Players, 1)
	assert.Equal(t, "Alice", lp.Players[0].Name)
	assert.Equal(t, lp.Players[0].ID, lp.HostID)
}

func TestOpsBeforeJoinRejected(t *testing.T) {
	srv := newTestServer(t)
	out := createRoom(t, srv, "")
	conn := dial(t, srv, out.RoomID)

	send(t, conn, types.ClientMessage{Type: "start"})
	errMsg := waitFor(t, conn, "error")
	var ap types.AckPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &ap))
	assert.False(t, ap.OK)
}

func TestTwoPlayerGameOverWire(t *testing.T) {
	srv := newTestServer(t)
	created := createRoom(t, srv, `{"hand_size": 3}`)

	host := dial(t, srv, created.RoomID)
	guest := dial(t, srv, created.RoomID)

	send(t, host, types.ClientMessage{Type: "join", Name: "Alice"})
	waitFor(t, host, "ack")
	send(t, guest, types.ClientMessage{Type: "join", Name: "Bob"})
	waitFor(t, guest, "ack")

	// only the host may start
	send(t, guest, types.ClientMessage{Type: "start"})
	waitFor(t, guest, "error")

	send(t, host, types.ClientMessage{Type: "start"})
	waitFor(t, host, "ack")

	hand := waitFor(t, host, "your_dice")
	var ph types.PrivateHandPayload
	require.NoError(t, json.Unmarshal(hand.Payload, &ph))
	assert.Len(t, ph.Dice, 3, "room-level hand size honored")

	started := waitFor(t, guest, "game_started")
	var gs types.GameStartedPayload
	require.NoError(t, json.Unmarshal(started.Payload, &gs))
	require.Len(t, gs.Order, 2)
	assert.Equal(t, gs.Order[0].ID, gs.CurrentTurn, "host joined first, bids first")

	// the host holds the first turn
	send(t, host, types.ClientMessage{Type: "bid", Count: 2, Face: 4})
	waitFor(t, host, "ack")

	nb := waitFor(t, guest, "new_bid")
	var np types.NewBidPayload
	require.NoError(t, json.Unmarshal(nb.Payload, &np))
	assert.Equal(t, 2, np.Count)
	assert.Equal(t, 4, np.Face)
	assert.Equal(t, "Alice", np.BidderName)
}
