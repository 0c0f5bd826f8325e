package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"festival-media-center/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManager_DeliversToSession(t *testing.T) {
	m := NewManager(zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = m.Serve(w, r, r.URL.Query().Get("session"))
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return m.Connected("s1") == 1 }, time.Second, 10*time.Millisecond)

	m.Notify(notify.Message{Level: notify.LevelSuccess, Cause: "submitted", Text: "done", SessionID: "s2"})
	m.Notify(notify.Message{Level: notify.LevelSuccess, Cause: "submitted", Text: "yours", SessionID: "s1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got notify.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "yours", got.Text)
	assert.Equal(t, "s1", got.SessionID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return m.Connected("s1") == 0 }, time.Second, 10*time.Millisecond)

	srv.Close()
	m.Stop()
}

func TestManager_NotifyWithoutClients(t *testing.T) {
	m := NewManager(zap.NewNop())
	defer m.Stop()

	m.Notify(notify.Message{Text: "nobody", SessionID: "missing"})
	m.Notify(notify.Message{Text: "no session"})
	assert.Equal(t, 0, m.Connected("missing"))
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Stop()
	m.Stop()
	m.RegisterClient(&Client{SessionID: "late"})
	assert.Equal(t, 0, m.Connected("late"))
}

func TestManager_StalledReaderDoesNotBlockNotify(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.writeWait = 50 * time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = m.Serve(w, r, "s1")
	}))

	// the peer connects and never reads
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return m.Connected("s1") == 1 }, time.Second, 10*time.Millisecond)

	big := strings.Repeat("x", 256<<10)
	start := time.Now()
	for i := 0; i < 160; i++ {
		m.Notify(notify.Message{Text: big, SessionID: "s1"})
	}
	assert.Less(t, time.Since(start), 10*time.Second, "each write gives up after the deadline")

	require.NoError(t, conn.Close())
	srv.Close()
	m.Stop()
}
