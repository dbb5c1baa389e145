package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Capture/internal/app"
	"github.com/dkeye/Capture/internal/config"
	"github.com/dkeye/Capture/internal/domain"
	"github.com/dkeye/Capture/internal/storage"
)

func dialTestChannel(t *testing.T) (*websocket.Conn, *app.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recs, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	coord := &app.Coordinator{
		Params:     app.NewParameterStore(),
		Sessions:   app.NewSessionTable(),
		Recordings: recs,
	}
	cfg := &config.Config{
		Mode:       "release",
		ReadLimit:  1 << 20,
		PingPeriod: time.Minute,
	}
	ctrl := NewController(coord, cfg)

	r := gin.New()
	ctx, cancel := context.WithCancel(context.Background())
	r.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signal"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws, coord
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func recv(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestChannel_InitAck(t *testing.T) {
	ws, _ := dialTestChannel(t)

	send(t, ws, gin.H{"type": "init", "session_id": "ws-1"})
	m := recv(t, ws)
	assert.Equal(t, "init_ack", m["type"])
	assert.Equal(t, "ws-1", m["session_id"])
	params := m["processing_parameters"].(map[string]any)
	assert.Equal(t, float64(30), params["fps"])
}

func TestChannel_InitRequiresSessionID(t *testing.T) {
	ws, _ := dialTestChannel(t)

	send(t, ws, gin.H{"type": "init"})
	m := recv(t, ws)
	assert.Equal(t, "error", m["type"])

	// The channel stays open after the structured error.
	send(t, ws, gin.H{"type": "ping"})
	assert.Equal(t, "pong", recv(t, ws)["type"])
}

func TestChannel_PingPong(t *testing.T) {
	ws, _ := dialTestChannel(t)
	send(t, ws, gin.H{"type": "ping"})
	assert.Equal(t, "pong", recv(t, ws)["type"])
}

func TestChannel_UnknownTypeIgnored(t *testing.T) {
	ws, _ := dialTestChannel(t)

	send(t, ws, gin.H{"type": "does_not_exist"})
	// No response and no closure: the next ping still answers.
	send(t, ws, gin.H{"type": "ping"})
	assert.Equal(t, "pong", recv(t, ws)["type"])
}

func TestChannel_AudioDataFlow(t *testing.T) {
	ws, _ := dialTestChannel(t)

	// audio_data before init: no session bound yet.
	send(t, ws, gin.H{"type": "audio_data", "audio_data": "AAAA"})
	assert.Equal(t, "error", recv(t, ws)["type"])

	send(t, ws, gin.H{"type": "init", "session_id": "ws-1"})
	require.Equal(t, "init_ack", recv(t, ws)["type"])

	send(t, ws, gin.H{"type": "audio_data", "audio_data": "AAAA"})
	m := recv(t, ws)
	require.Equal(t, "audio_processed", m["type"])
	processed := m["processed"].(map[string]any)
	assert.Equal(t, float64(30), processed["fps_applied"])
	assert.Equal(t, float64(44100), processed["sample_rate"])
	assert.Equal(t, float64(1), processed["channels"])
	applied := m["parameters_applied"].(map[string]any)
	assert.Equal(t, float64(64), applied["batch_size"])
}

func TestChannel_UpdateParams(t *testing.T) {
	ws, coord := dialTestChannel(t)

	send(t, ws, gin.H{"type": "init", "session_id": "ws-1"})
	require.Equal(t, "init_ack", recv(t, ws)["type"])

	send(t, ws, gin.H{"type": "update_params", "params": gin.H{"fps": 24, "batch_size": 32}})
	m := recv(t, ws)
	require.Equal(t, "params_updated", m["type"])
	params := m["parameters"].(map[string]any)
	assert.Equal(t, float64(24), params["fps"])
	assert.Equal(t, float64(32), params["batch_size"])

	// Global defaults follow the channel update.
	assert.Equal(t, domain.ProcessingParams{FrameRate: 24, BatchSize: 32}, coord.Params.Get())

	// Invalid patch answers an error and leaves state alone.
	send(t, ws, gin.H{"type": "update_params", "params": gin.H{"fps": -1}})
	assert.Equal(t, "error", recv(t, ws)["type"])
	assert.Equal(t, 24, coord.Params.Get().FrameRate)
}

func TestChannel_DisconnectRemovesSession(t *testing.T) {
	ws, coord := dialTestChannel(t)

	send(t, ws, gin.H{"type": "init", "session_id": "ws-1"})
	require.Equal(t, "init_ack", recv(t, ws)["type"])

	require.NoError(t, ws.Close())

	require.Eventually(t, func() bool {
		_, err := coord.Sessions.Get("ws-1")
		return err == domain.ErrSessionNotFound
	}, 3*time.Second, 10*time.Millisecond, "closing the channel tears the session down")
}

func TestChannel_ExplicitClose(t *testing.T) {
	ws, coord := dialTestChannel(t)

	send(t, ws, gin.H{"type": "init", "session_id": "ws-1"})
	require.Equal(t, "init_ack", recv(t, ws)["type"])

	send(t, ws, gin.H{"type": "close"})

	require.Eventually(t, func() bool {
		_, err := coord.Sessions.Get("ws-1")
		return err == domain.ErrSessionNotFound
	}, 3*time.Second, 10*time.Millisecond)
}

func TestChannel_OfferAndCandidate(t *testing.T) {
	ws, _ := dialTestChannel(t)

	send(t, ws, gin.H{
		"type":       "offer",
		"session_id": "rtc-1",
		"offer":      gin.H{"type": "offer", "sdp": "v=0 over-ws"},
	})
	m := recv(t, ws)
	require.Equal(t, "answer", m["type"])
	answer := m["answer"].(map[string]any)
	assert.Equal(t, "v=0 over-ws", answer["sdp"])

	send(t, ws, gin.H{
		"type":       "candidate",
		"session_id": "rtc-1",
		"candidate":  gin.H{"candidate": "cand-1"},
	})
	assert.Equal(t, "candidate_ack", recv(t, ws)["type"])

	send(t, ws, gin.H{
		"type":       "candidate",
		"session_id": "ghost",
		"candidate":  gin.H{"candidate": "cand-1"},
	})
	assert.Equal(t, "error", recv(t, ws)["type"])
}
