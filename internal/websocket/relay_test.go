package websocket

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
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// relayServer runs Relay for a single connection and reports its result on done.
func relayServer(t *testing.T, events chan string) (*websocket.Conn, <-chan error) {
	t.Helper()
	done := make(chan error, 1)
	up := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		done <- Relay(context.Background(), conn, events)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, done
}

func waitRelay(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not return")
		return nil
	}
}

func TestRelayForwardsEventsAndPongs(t *testing.T) {
	events := make(chan string, 2)
	client, done := relayServer(t, events)

	events <- "not json"
	events <- `{"student_id":"s1","action":"registered","detail":"CS101"}`
	var ev EnrollmentResponse
	require.NoError(t, client.ReadJSON(&ev))
	assert.Equal(t, EventEnrollment, ev.Event)
	assert.JSONEq(t, `{"student_id":"s1","action":"registered","detail":"CS101"}`, string(ev.Data))

	require.NoError(t, client.WriteJSON(RequestEnvelope{Action: ActionPing}))
	var pong PongResponse
	require.NoError(t, client.ReadJSON(&pong))
	assert.Equal(t, EventPong, pong.Event)

	require.NoError(t, client.WriteJSON(RequestEnvelope{Action: "dance"}))
	var errResp ErrorResponse
	require.NoError(t, client.ReadJSON(&errResp))
	assert.Equal(t, EventError, errResp.Event)
	assert.Contains(t, errResp.Error, "dance")

	require.NoError(t, client.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	err := waitRelay(t, done)
	assert.True(t, IsClosed(err), "got %v", err)
}

func TestRelayEndsWhenSubscriptionCloses(t *testing.T) {
	events := make(chan string)
	_, done := relayServer(t, events)

	close(events)
	assert.NoError(t, waitRelay(t, done))
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://erp.example.edu"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Header.Set("Origin", "https://ERP.example.edu")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))
}
