// Package state holds per-wallet session state. Every update replaces a whole
// slice of the state under the session lock, so readers never observe a
// partially written value.
package state

import (
	"strings"
	"sync"
	"time"

	"boundless-travel/internal/metrics"
	"boundless-travel/internal/models"
	"boundless-travel/internal/wallet"
)

// AppState snapshot of one wallet session
type AppState struct {
	Account         string                    `json:"account"`
	Connector       wallet.ConnectorKind      `json:"connector"`
	Connected       bool                      `json:"connected"`
	TravelInfo      *models.AccountTravelInfo `json:"travelInfo"`
	Settings        *models.TravelSettings    `json:"settings"`
	IsWelcomeViewed bool                      `json:"isWelcomeViewed"`
	OnboardingStep  int                       `json:"onboardingStep"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// Session guarded AppState of one account
type Session struct {
	mu    sync.RWMutex
	state AppState
}

// Snapshot copy of the current state
func (s *Session) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) update(fn func(*AppState)) AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	s.state.UpdatedAt = time.Now()
	return s.state
}

// Connect marks the wallet connected through connector
func (s *Session) Connect(connector wallet.ConnectorKind) AppState {
	return s.update(func(st *AppState) {
		st.Connector = connector
		st.Connected = true
	})
}

// SetTravelInfo replaces the cached bookkeeping record
func (s *Session) SetTravelInfo(info *models.AccountTravelInfo) AppState {
	return s.update(func(st *AppState) {
		if info == nil {
			st.TravelInfo = nil
			return
		}
		cp := *info
		st.TravelInfo = &cp
	})
}

// SetSettings replaces the cached campaign settings
func (s *Session) SetSettings(settings *models.TravelSettings) AppState {
	return s.update(func(st *AppState) {
		if settings == nil {
			st.Settings = nil
			return
		}
		cp := *settings
		st.Settings = &cp
	})
}

// SetOnboardingStep records the wizard position
func (s *Session) SetOnboardingStep(step int) AppState {
	return s.update(func(st *AppState) {
		st.OnboardingStep = step
	})
}

// MarkWelcomeViewed completes onboarding
func (s *Session) MarkWelcomeViewed() AppState {
	return s.update(func(st *AppState) {
		st.IsWelcomeViewed = true
	})
}

// Reset disconnect: drops cached travel info and onboarding progress
func (s *Session) Reset() AppState {
	return s.update(func(st *AppState) {
		account := st.Account
		*st = AppState{Account: account, OnboardingStep: 1}
	})
}

// Store sessions keyed by lower-cased account address
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func key(account string) string {
	return strings.ToLower(account)
}

// Get returns the session of account, creating it when absent
func (s *Store) Get(account string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(account)
	sess, ok := s.sessions[k]
	if !ok {
		sess = &Session{state: AppState{Account: account, OnboardingStep: 1}}
		s.sessions[k] = sess
		metrics.ActiveSessions.Inc()
	}
	return sess
}

// Lookup returns the session of account if one exists
func (s *Store) Lookup(account string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key(account)]
	return sess, ok
}

// Remove drops the session of account after resetting it
func (s *Store) Remove(account string) {
	s.mu.Lock()
	sess, ok := s.sessions[key(account)]
	delete(s.sessions, key(account))
	s.mu.Unlock()
	if ok {
		metrics.ActiveSessions.Dec()
		sess.Reset()
	}
}
