package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

// The capture pipeline runs fixed-rate mono; only frame rate and batch
// size are negotiable per session.
const (
	sampleRate = 44100
	channels   = 1
)

type processedInfo struct {
	FrameRate   int    `json:"fps_applied"`
	BatchSize   int    `json:"batch_size_applied"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`
	ProcessedAt string `json:"processed_at"`
}

func newProcessedInfo(params domain.ProcessingParams) processedInfo {
	return processedInfo{
		FrameRate:   params.FrameRate,
		BatchSize:   params.BatchSize,
		SampleRate:  sampleRate,
		Channels:    channels,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}
}

func (ctl *Controller) handleAudioData(c *WsSignalConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		AudioData string `json:"audio_data"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audio payload")
		ctl.sendError(c, "malformed audio payload")
		return
	}

	sid := c.boundSID()
	if sid == "" {
		ctl.sendError(c, domain.ErrSessionNotFound.Error())
		return
	}

	params, err := ctl.Coord.AudioChunk(sid, core.Frame(p.AudioData))
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	resp := struct {
		Type      string                  `json:"type"`
		Processed processedInfo           `json:"processed"`
		Applied   domain.ProcessingParams `json:"parameters_applied"`
	}{
		Type:      "audio_processed",
		Processed: newProcessedInfo(params),
		Applied:   params,
	}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) handleUpdateParams(c *WsSignalConn, data []byte) {
	var p struct {
		Type   string             `json:"type"`
		Params domain.ParamsPatch `json:"params"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad params payload")
		ctl.sendError(c, "malformed params payload")
		return
	}

	sid := c.boundSID()
	if sid == "" {
		ctl.sendError(c, domain.ErrSessionNotFound.Error())
		return
	}

	params, err := ctl.Coord.UpdateParams(sid, p.Params)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	resp := struct {
		Type   string                  `json:"type"`
		Params domain.ProcessingParams `json:"parameters"`
	}{
		Type:   "params_updated",
		Params: params,
	}
	ctl.sendJSON(c, resp)
}
