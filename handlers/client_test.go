package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixzhu97/whatschat-sub002/utils"
)

// newConnPair upgrades a loopback websocket and returns both ends.
func newConnPair(t *testing.T) (serverSide *websocket.Conn, peer *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _ := upgrader.Upgrade(w, r, nil)
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	serverSide = <-conns
	require.NotNil(t, serverSide)
	t.Cleanup(func() { serverSide.Close() })
	return serverSide, peer
}

func TestEmitClosesSlowConsumer(t *testing.T) {
	serverConn, peer := newConnPair(t)

	// Queue of one and no writePump: nothing ever drains.
	client := NewClient(uuid.NewString(), serverConn, 1, utils.NewLogger("test"))

	client.Emit("message:send", "first")
	client.Emit("message:send", "second")

	// The overflow closed the session and the frame was dropped, not queued.
	select {
	case <-client.done:
	default:
		t.Fatal("expected connection to be closed")
	}
	assert.Len(t, client.send, 1)

	// The peer observes the transport going away.
	peer.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := peer.ReadMessage()
	assert.Error(t, err)
}

func TestEmitDeliversWithinQueueCapacity(t *testing.T) {
	serverConn, peer := newConnPair(t)

	client := NewClient(uuid.NewString(), serverConn, 8, utils.NewLogger("test"))
	go client.writePump()

	client.Emit("message:send", "first")

	peer.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "message:send")

	select {
	case <-client.done:
		t.Fatal("connection should still be open")
	default:
	}

	client.Close()
}
