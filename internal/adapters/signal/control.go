package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/domain"
)

func (ctl *Controller) handleInit(c *WsSignalConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		log.Error().Str("module", "signal").Msg("bad init payload")
		ctl.sendError(c, "missing session id")
		return
	}

	params, err := ctl.Coord.Connect(p.SessionID, c, c.cancel)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	c.bind(p.SessionID)
	log.Info().Str("module", "signal").Str("sid", string(p.SessionID)).Msg("channel established")

	resp := struct {
		Type      string                  `json:"type"`
		SessionID domain.SessionID        `json:"session_id"`
		Params    domain.ProcessingParams `json:"processing_parameters"`
	}{
		Type:      "init_ack",
		SessionID: p.SessionID,
		Params:    params,
	}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) handlePing(c *WsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}

// handleClose is the explicit teardown event; the disconnect path in
// readPump covers the implicit one. Removal cancels the connection
// context, which winds the pumps down.
func (ctl *Controller) handleClose(c *WsSignalConn) {
	sid := c.boundSID()
	if sid == "" {
		ctl.sendError(c, domain.ErrSessionNotFound.Error())
		return
	}
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "closed"})
	ctl.Coord.Close(sid)
}
