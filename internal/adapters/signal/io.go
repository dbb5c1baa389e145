package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump processes the channel's events in delivery order. Its exit —
// client close, read error, context cancel — is the teardown trigger:
// the bound session is removed before the socket is released.
func (ctl *Controller) readPump(ctx context.Context, c *WsSignalConn) {
	defer func() {
		sid := c.boundSID()
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		if sid != "" {
			ctl.Coord.Disconnect(sid, c)
		}
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("readPump read error")
				return
			}
			ctl.handleSignal(c, data)
		}
	}
}

func (ctl *Controller) handleSignal(c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "malformed message")
		return
	}

	switch env.Type {
	case "init":
		ctl.handleInit(c, data)
	case "offer":
		ctl.handleOffer(c, data)
	case "candidate":
		ctl.handleCandidate(c, data)
	case "audio_data":
		ctl.handleAudioData(c, data)
	case "update_params":
		ctl.handleUpdateParams(c, data)
	case "ping":
		ctl.handlePing(c)
	case "close":
		ctl.handleClose(c)
	default:
		// Unknown types are ignored; they never close the channel.
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsSignalConn, msg string) {
	ctl.sendJSON(c, errorEnvelope{Type: "error", Message: msg})
}

type errorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
