// Package domain contains entity types without transport or lifecycle logic.
package domain

import (
	"time"

	"github.com/pion/webrtc/v4"
)

type SessionID string

type SessionState string

const (
	// StateNegotiating: offer received, no candidate or channel yet.
	StateNegotiating SessionState = "NEGOTIATING"
	// StateActive: session is live and may stream audio.
	StateActive SessionState = "ACTIVE"
)

// Session is one client's signaling lifecycle instance. The offer and
// candidates are relayed blobs: stored and echoed, never negotiated.
type Session struct {
	ID            SessionID
	CreatedAt     time.Time
	Offer         *webrtc.SessionDescription
	Candidates    []webrtc.ICECandidateInit
	AppliedParams ProcessingParams
	State         SessionState
}
