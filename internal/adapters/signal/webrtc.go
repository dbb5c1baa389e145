package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/domain"
)

// Offer and candidate also ride the persistent channel, mirroring the
// discrete endpoints. Payloads stay opaque relayed blobs.

func (ctl *Controller) handleOffer(c *WsSignalConn, data []byte) {
	var p struct {
		Type      string                     `json:"type"`
		Offer     *webrtc.SessionDescription `json:"offer"`
		SessionID domain.SessionID           `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Offer == nil {
		log.Error().Str("module", "signal").Msg("bad offer payload")
		ctl.sendError(c, "missing offer")
		return
	}
	sid := p.SessionID
	if sid == "" {
		sid = c.boundSID()
	}

	res, err := ctl.Coord.Offer(sid, *p.Offer)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	resp := struct {
		Type      string                    `json:"type"`
		Answer    webrtc.SessionDescription `json:"answer"`
		SessionID domain.SessionID          `json:"session_id"`
		Params    domain.ProcessingParams   `json:"processing_parameters"`
	}{
		Type:      "answer",
		Answer:    res.Answer,
		SessionID: res.SessionID,
		Params:    res.Params,
	}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) handleCandidate(c *WsSignalConn, data []byte) {
	var p struct {
		Type      string                   `json:"type"`
		Candidate *webrtc.ICECandidateInit `json:"candidate"`
		SessionID domain.SessionID         `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Candidate == nil {
		log.Error().Str("module", "signal").Msg("bad candidate payload")
		ctl.sendError(c, "missing candidate")
		return
	}
	sid := p.SessionID
	if sid == "" {
		sid = c.boundSID()
	}

	if err := ctl.Coord.Candidate(sid, *p.Candidate); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "candidate_ack"})
}
