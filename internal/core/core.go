package core

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Capture/internal/domain"
)

// Frame is a raw serialized payload pushed over a signal channel.
type Frame []byte

// SignalConnection abstracts the per-session persistent channel.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ParameterStore is the process-wide processing configuration.
// Get never fails; Update is atomic with respect to readers.
type ParameterStore interface {
	Get() domain.ProcessingParams
	Update(patch domain.ParamsPatch) (domain.ProcessingParams, error)
}

// SessionTable is the authoritative registry of live sessions.
// Operations on the same id are linearizable: of two concurrent
// Create calls exactly one wins.
type SessionTable interface {
	Create(id domain.SessionID, offer *webrtc.SessionDescription, params domain.ProcessingParams) (domain.Session, error)
	AppendCandidate(id domain.SessionID, cand webrtc.ICECandidateInit) error
	UpdateAppliedParams(id domain.SessionID, params domain.ProcessingParams) error
	BindChannel(id domain.SessionID, conn SignalConnection, cancel func()) error
	Get(id domain.SessionID) (domain.Session, error)
	// Remove is idempotent; removing an absent id is a no-op.
	Remove(id domain.SessionID)
	// RemoveChannel removes the session only while conn is still its
	// bound channel, so a stale connection's teardown cannot take down
	// a session that has since rebound.
	RemoveChannel(id domain.SessionID, conn SignalConnection)
}

// RecordingStore is append-only persistence for finished captures.
type RecordingStore interface {
	Save(rec domain.RecordingRecord) (domain.RecordingID, error)
	Get(id domain.RecordingID) (domain.RecordingRecord, error)
	List() ([]domain.RecordingSummary, error)
}
