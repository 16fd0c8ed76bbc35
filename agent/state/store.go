package state

import (
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// Store owns every live call session for the process lifetime. No caller
// holds a reference into its internals; all mutation goes through Create and
// Append so the append-only and uniqueness invariants hold.
//
// There is no eviction. Sessions accumulate until restart, which is accepted
// for this scope.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newID func() string
	now   func() time.Time
}

type StoreOption func(*Store)

// WithIDGenerator overrides session id generation, mainly for tests.
func WithIDGenerator(fn func() string) StoreOption {
	return func(st *Store) {
		if fn != nil {
			st.newID = fn
		}
	}
}

// WithClock overrides the store clock, mainly for tests.
func WithClock(fn func() time.Time) StoreOption {
	return func(st *Store) {
		if fn != nil {
			st.now = fn
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	st := &Store{
		sessions: make(map[string]*Session),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(st)
		}
	}
	return st
}

// Create allocates a fresh session bound to customerID and returns it.
func (st *Store) Create(customerID string) (*Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, contractx.ErrInvalidCustomer
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.newID()
	for {
		if _, exists := st.sessions[id]; !exists {
			break
		}
		id = st.newID()
	}

	sess := newSession(id, customerID, st.now)
	st.sessions[id] = sess
	return sess, nil
}

// Get returns the session for sessionID or ErrUnknownSession.
func (st *Store) Get(sessionID string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, contractx.ErrUnknownSession
	}
	return sess, nil
}

// Append adds messages to the session transcript, preserving order.
func (st *Store) Append(sessionID string, msgs ...*schema.Message) error {
	sess, err := st.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Append(msgs...)
	return nil
}

// History returns the full ordered transcript for sessionID.
func (st *Store) History(sessionID string) ([]*schema.Message, error) {
	sess, err := st.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
