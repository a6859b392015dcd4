package session

import (
	"context"
	"sync"
	"time"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/order"
)

// State tracks where a customer is in the ordering conversation.
type State string

const (
	StateGreeting   State = "greeting"
	StateOrdering   State = "ordering"
	StateClarifying State = "clarifying"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
)

// Session is the per-phone conversation context. PendingLines holds the
// raw extraction while a clarification round trip is in flight; Draft
// holds the normalized order awaiting confirmation.
type Session struct {
	Phone        string
	State        State
	PendingLines []order.Line
	Pending      *order.ClarificationRequest
	Draft        *order.Order
	CustomerName string
	UpdatedAt    time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Get returns the live session for a phone number, creating a fresh one
// when none exists or the previous one expired.
func (s *Store) Get(phone string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[phone]
	if !ok || time.Since(sess.UpdatedAt) > s.ttl {
		sess = &Session{Phone: phone, State: StateGreeting, UpdatedAt: time.Now()}
		s.sessions[phone] = sess
	}
	return sess
}

// Save stores the session and refreshes its expiry clock.
func (s *Store) Save(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = time.Now()
	s.sessions[sess.Phone] = sess
}

// Reset drops the conversation so the next message starts over.
func (s *Store) Reset(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, phone)
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for phone, sess := range s.sessions {
		if time.Since(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, phone)
		}
	}
}

// RunJanitor evicts expired sessions until the context is cancelled.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
