package app

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

type sessionEntry struct {
	sess   domain.Session
	conn   core.SignalConnection
	cancel func()
}

// Table is the authoritative registry of live sessions. Every operation
// takes the table lock, which makes per-id operations linearizable:
// two concurrent Create calls for the same id resolve to one winner.
type Table struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry
}

func NewSessionTable() *Table {
	return &Table{sessions: make(map[domain.SessionID]*sessionEntry)}
}

func (t *Table) Create(id domain.SessionID, offer *webrtc.SessionDescription, params domain.ProcessingParams) (domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[id]; ok {
		return domain.Session{}, domain.ErrDuplicateSession
	}
	sess := domain.Session{
		ID:            id,
		CreatedAt:     time.Now(),
		Offer:         offer,
		AppliedParams: params,
		State:         domain.StateNegotiating,
	}
	t.sessions[id] = &sessionEntry{sess: sess}
	log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session created")
	return sess, nil
}

// AppendCandidate stores a relayed ICE candidate in arrival order.
// The first candidate marks the session live.
func (t *Table) AppendCandidate(id domain.SessionID, cand webrtc.ICECandidateInit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.sess.Candidates = append(e.sess.Candidates, cand)
	if e.sess.State == domain.StateNegotiating {
		e.sess.State = domain.StateActive
		log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session active")
	}
	return nil
}

func (t *Table) UpdateAppliedParams(id domain.SessionID, params domain.ProcessingParams) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.sess.AppliedParams = params
	return nil
}

// BindChannel attaches the persistent channel to a session. A session
// with a live channel is live, so binding also activates it.
func (t *Table) BindChannel(id domain.SessionID, conn core.SignalConnection, cancel func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.conn = conn
	e.cancel = cancel
	if e.sess.State == domain.StateNegotiating {
		e.sess.State = domain.StateActive
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("channel bound")
	return nil
}

// Get returns a snapshot copy; the candidate slice is cloned so callers
// never alias table-owned state.
func (t *Table) Get(id domain.SessionID) (domain.Session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	sess := e.sess
	sess.Candidates = append([]webrtc.ICECandidateInit(nil), e.sess.Candidates...)
	return sess, nil
}

// Remove deletes a session. Idempotent: teardown may race with natural
// expiry, so a missing id is a no-op. Cancelling the bound channel
// context stops its pumps within bounded time; the adapter owns and
// closes the connection itself.
func (t *Table) Remove(id domain.SessionID) {
	t.mu.Lock()
	e, ok := t.sessions[id]
	delete(t.sessions, id)
	t.mu.Unlock()
	if !ok {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session removed")
}

// RemoveChannel is the disconnect path: it removes the session only if
// conn is still the bound channel. A connection replaced by a later
// bind tears nothing down when it finally dies.
func (t *Table) RemoveChannel(id domain.SessionID, conn core.SignalConnection) {
	t.mu.Lock()
	e, ok := t.sessions[id]
	if !ok || e.conn != conn {
		t.mu.Unlock()
		return
	}
	delete(t.sessions, id)
	t.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session removed on disconnect")
}

func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
