package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/app"
	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

// Handlers exposes the discrete request/response operations. Each one
// decodes, calls the coordinator, and encodes either the success body or
// {status: error, message} — domain errors never escape as panics and
// never carry internal detail.
type Handlers struct {
	Coord *app.Coordinator
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateSession):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrRecordingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"status": "error", "message": err.Error()})
}

func (h *Handlers) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, h.Coord.Params.Get())
}

func (h *Handlers) UpdateParams(c *gin.Context) {
	var patch domain.ParamsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, domain.ErrInvalidEvent)
		return
	}
	params, err := h.Coord.Params.Update(patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "params": params})
}

func (h *Handlers) Offer(c *gin.Context) {
	var req struct {
		Offer     *webrtc.SessionDescription `json:"offer"`
		SessionID domain.SessionID           `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Offer == nil {
		writeError(c, domain.ErrInvalidEvent)
		return
	}
	res, err := h.Coord.Offer(req.SessionID, *req.Offer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                "success",
		"answer":                res.Answer,
		"session_id":            res.SessionID,
		"processing_parameters": res.Params,
	})
}

func (h *Handlers) Candidate(c *gin.Context) {
	var req struct {
		Candidate *webrtc.ICECandidateInit `json:"candidate"`
		SessionID domain.SessionID         `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Candidate == nil {
		writeError(c, domain.ErrInvalidEvent)
		return
	}
	if err := h.Coord.Candidate(req.SessionID, *req.Candidate); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handlers) AudioData(c *gin.Context) {
	var req struct {
		AudioData string           `json:"audio_data"`
		SessionID domain.SessionID `json:"session_id"`
		Timestamp int64            `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AudioData == "" || req.SessionID == "" {
		writeError(c, domain.ErrInvalidEvent)
		return
	}
	params, err := h.Coord.AudioChunk(req.SessionID, core.Frame(req.AudioData))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                "success",
		"stored":                true,
		"processing_parameters": params,
	})
}

func (h *Handlers) SaveRecording(c *gin.Context) {
	var req struct {
		AudioData string           `json:"audio_data"`
		Duration  float64          `json:"duration"`
		SessionID domain.SessionID `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrInvalidEvent)
		return
	}
	id, err := h.Coord.SaveRecording(req.AudioData, req.Duration, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save recording")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Recording saved successfully",
		"filename": id,
	})
}

func (h *Handlers) ListRecordings(c *gin.Context) {
	recs, err := h.Coord.Recordings.List()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list recordings")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recs})
}

func (h *Handlers) GetRecording(c *gin.Context) {
	rec, err := h.Coord.Recordings.Get(domain.RecordingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
