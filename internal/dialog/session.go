// Package dialog implements the conversational state machine that walks a
// user from occasion selection through bouquet browsing to a placed order.
// Catalog, customer registry, order store, date parser and message channel
// are injected collaborators; the package holds no Telegram specifics.
package dialog

import (
	"sync"
	"time"
)

// State is the per-user dialog state.
type State string

const (
	// StateIdle is the initial state and the target of every terminal branch.
	StateIdle State = "idle"

	// Occasion side flow.
	StateWaitingCustomOccasion    State = "waiting_custom_occasion"
	StateWaitingConsultationPhone State = "waiting_consultation_phone"
	StateWaitingPriceSelection    State = "waiting_price_selection"

	// Order flow.
	StateWaitingOrderName         State = "waiting_order_name"
	StateWaitingOrderAddress      State = "waiting_order_address"
	StateWaitingOrderDeliveryTime State = "waiting_order_delivery_time"
	StateWaitingOrderPhone        State = "waiting_order_phone"
)

// entryStates are reachable from any state because inline buttons are not
// gated by the current state. StateIdle is included since terminal branches
// always fall back to it.
var entryStates = []State{
	StateIdle,
	StateWaitingCustomOccasion,
	StateWaitingConsultationPhone,
	StateWaitingPriceSelection,
	StateWaitingOrderName,
}

// transitions enumerates the allowed edges. Text-driven states add their
// successor on top of the button-driven entry edges.
var transitions = map[State][]State{
	StateIdle:                     entryStates,
	StateWaitingCustomOccasion:    entryStates,
	StateWaitingConsultationPhone: entryStates,
	StateWaitingPriceSelection:    entryStates,
	StateWaitingOrderName:         append([]State{StateWaitingOrderAddress}, entryStates...),
	StateWaitingOrderAddress:      append([]State{StateWaitingOrderDeliveryTime}, entryStates...),
	StateWaitingOrderDeliveryTime: append([]State{StateWaitingOrderPhone}, entryStates...),
	StateWaitingOrderPhone:        entryStates,
}

// CanTransition reports whether the edge from -> to is declared.
// A self-loop (re-prompt) is always allowed.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidState reports whether s belongs to the declared state set.
func IsValidState(s State) bool {
	_, ok := transitions[s]
	return ok
}

// OrderDraft accumulates the fields collected during the dialog.
// An order is created only when all of them are populated.
type OrderDraft struct {
	Occasion     string
	MaxPrice     int
	CustomerID   int64
	BouquetID    int64
	Address      string
	DeliveryTime time.Time
}

// Complete reports whether the draft carries everything an order needs.
func (d *OrderDraft) Complete() bool {
	return d.CustomerID != 0 && d.BouquetID != 0 && d.Address != "" && !d.DeliveryTime.IsZero()
}

// Session is the per-user conversational context. It lives in memory only:
// created on first contact, cleared on completion and expired when idle.
// The mutex guards State, Draft and UpdatedAt against the cleanup loop.
type Session struct {
	UserID    int64
	ChatID    int64
	State     State
	Draft     OrderDraft
	StartedAt time.Time
	UpdatedAt time.Time

	mu sync.Mutex
}

// NewSession creates a session in the initial state.
func NewSession(userID, chatID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		ChatID:    chatID,
		State:     StateIdle,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// setState moves the session along a declared edge. Undeclared moves are
// refused so a handler bug cannot leave the machine in an unreachable state.
func (s *Session) setState(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !CanTransition(s.State, to) {
		return false
	}
	s.State = to
	s.UpdatedAt = time.Now()
	return true
}

// clear resets the session to the initial state and drops the draft.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateIdle
	s.Draft = OrderDraft{}
	s.UpdatedAt = time.Now()
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// SessionStore manages dialog sessions keyed by Telegram user id.
type SessionStore struct {
	sessions map[int64]*Session
	mu       sync.Mutex
	timeout  time.Duration
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		timeout:  timeout,
	}
}

// Get returns the session for a user, or nil.
func (ss *SessionStore) Get(userID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.sessions[userID]
}

// GetOrCreate returns the existing session or creates a fresh one,
// replacing an expired session in passing.
func (ss *SessionStore) GetOrCreate(userID, chatID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, ok := ss.sessions[userID]
	if ok && !session.IsExpired(ss.timeout) {
		return session
	}

	session = NewSession(userID, chatID)
	ss.sessions[userID] = session
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(userID int64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, userID)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for userID, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, userID)
			removed++
		}
	}
	return removed
}
