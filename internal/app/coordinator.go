package app

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

// Coordinator applies session-scoped signaling events to the shared
// stores. Per-session ordering comes from the per-connection read loop;
// cross-session calls run concurrently and rely on the stores' locking.
type Coordinator struct {
	Params     core.ParameterStore
	Sessions   core.SessionTable
	Recordings core.RecordingStore
}

// OfferResult is the acknowledgment for a negotiation offer. The answer
// is the echoed offer: this coordinator relays negotiation blobs, it
// does not negotiate.
type OfferResult struct {
	Answer    webrtc.SessionDescription
	SessionID domain.SessionID
	Params    domain.ProcessingParams
}

// Offer creates the session, snapshotting the current global parameters
// as its applied configuration.
func (c *Coordinator) Offer(id domain.SessionID, offer webrtc.SessionDescription) (OfferResult, error) {
	if id == "" || offer.SDP == "" {
		return OfferResult{}, domain.ErrInvalidEvent
	}
	params := c.Params.Get()
	sess, err := c.Sessions.Create(id, &offer, params)
	if err != nil {
		return OfferResult{}, err
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(id)).Msg("offer accepted")
	return OfferResult{Answer: offer, SessionID: sess.ID, Params: sess.AppliedParams}, nil
}

func (c *Coordinator) Candidate(id domain.SessionID, cand webrtc.ICECandidateInit) error {
	if err := c.Sessions.AppendCandidate(id, cand); err != nil {
		return err
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(id)).Msg("ice candidate stored")
	return nil
}

// AudioChunk acknowledges a streamed payload with the parameters applied
// to that session, not the live globals: a session keeps the snapshot
// taken at offer time unless it explicitly updates them mid-stream.
func (c *Coordinator) AudioChunk(id domain.SessionID, payload core.Frame) (domain.ProcessingParams, error) {
	if len(payload) == 0 {
		return domain.ProcessingParams{}, domain.ErrInvalidEvent
	}
	sess, err := c.Sessions.Get(id)
	if err != nil {
		return domain.ProcessingParams{}, err
	}
	if sess.State != domain.StateActive {
		return domain.ProcessingParams{}, domain.ErrInvalidEvent
	}
	log.Debug().Str("module", "app.coordinator").Str("sid", string(id)).Int("bytes", len(payload)).Msg("audio chunk")
	return sess.AppliedParams, nil
}

// UpdateParams merges the patch into the global store and mirrors the
// result into the session's applied parameters, so later sessions pick
// up the new defaults while this one switches immediately.
func (c *Coordinator) UpdateParams(id domain.SessionID, patch domain.ParamsPatch) (domain.ProcessingParams, error) {
	sess, err := c.Sessions.Get(id)
	if err != nil {
		return domain.ProcessingParams{}, err
	}
	if sess.State != domain.StateActive {
		return domain.ProcessingParams{}, domain.ErrInvalidEvent
	}
	updated, err := c.Params.Update(patch)
	if err != nil {
		return domain.ProcessingParams{}, err
	}
	if err := c.Sessions.UpdateAppliedParams(id, updated); err != nil {
		// Session torn down between Get and here; removal wins.
		return domain.ProcessingParams{}, err
	}
	return updated, nil
}

// Connect binds an opened persistent channel to its session, creating
// the session if the channel arrives before any offer. Returns the
// current global parameters for the init acknowledgment.
func (c *Coordinator) Connect(id domain.SessionID, conn core.SignalConnection, cancel func()) (domain.ProcessingParams, error) {
	if id == "" {
		return domain.ProcessingParams{}, domain.ErrInvalidEvent
	}
	params := c.Params.Get()
	if _, err := c.Sessions.Create(id, nil, params); err != nil && err != domain.ErrDuplicateSession {
		return domain.ProcessingParams{}, err
	}
	if err := c.Sessions.BindChannel(id, conn, cancel); err != nil {
		return domain.ProcessingParams{}, err
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(id)).Msg("channel connected")
	return params, nil
}

// SaveRecording persists a finished capture. Runs without any session
// lock held; a storage failure surfaces to the caller and leaves every
// session untouched.
func (c *Coordinator) SaveRecording(audio string, duration float64, sid domain.SessionID) (domain.RecordingID, error) {
	if audio == "" {
		return "", domain.ErrInvalidEvent
	}
	if duration < 0 {
		return "", domain.ErrInvalidEvent
	}
	rec := domain.RecordingRecord{
		AudioData:     audio,
		AppliedParams: c.Params.Get(),
		Duration:      duration,
		SessionID:     sid,
	}
	id, err := c.Recordings.Save(rec)
	if err != nil {
		return "", err
	}
	log.Info().Str("module", "app.coordinator").Str("recording", string(id)).Msg("recording saved")
	return id, nil
}

// Close tears the session down. Terminal: later events for the id fail
// with SessionNotFound until a fresh offer recreates it.
func (c *Coordinator) Close(id domain.SessionID) {
	c.Sessions.Remove(id)
	log.Info().Str("module", "app.coordinator").Str("sid", string(id)).Msg("session closed")
}

// Disconnect is Close for the channel-died path: removal happens only
// if conn is still the session's bound channel.
func (c *Coordinator) Disconnect(id domain.SessionID, conn core.SignalConnection) {
	c.Sessions.RemoveChannel(id, conn)
}
