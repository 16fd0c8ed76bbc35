package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

func TestCreateRejectsEmptyCustomer(t *testing.T) {
	t.Parallel()

	st := NewStore()
	if _, err := st.Create("   "); !errors.Is(err, contractx.ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("store has %d sessions after failed create, want 0", st.Len())
	}
}

func TestCreateGeneratesFreshIDs(t *testing.T) {
	t.Parallel()

	st := NewStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := st.Create("C456")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[sess.ID()] {
			t.Fatalf("duplicate session id %q", sess.ID())
		}
		seen[sess.ID()] = true
	}
}

func TestCreateRetriesOnIDCollision(t *testing.T) {
	t.Parallel()

	ids := []string{"dup", "dup", "fresh"}
	st := NewStore(WithIDGenerator(func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}))

	first, err := st.Create("C1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := st.Create("C2")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatalf("collision not resolved: both sessions have id %q", first.ID())
	}
}

func TestGetUnknownSession(t *testing.T) {
	t.Parallel()

	st := NewStore()
	if _, err := st.Get("not-real"); !errors.Is(err, contractx.ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
	if err := st.Append("not-real", schema.UserMessage("hi")); !errors.Is(err, contractx.ErrUnknownSession) {
		t.Fatalf("Append: expected ErrUnknownSession, got %v", err)
	}
	if _, err := st.History("not-real"); !errors.Is(err, contractx.ErrUnknownSession) {
		t.Fatalf("History: expected ErrUnknownSession, got %v", err)
	}
}

func TestAppendPreservesOrderAcrossTurns(t *testing.T) {
	t.Parallel()

	st := NewStore()
	sess, err := st.Create("C456")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	lastLen := 0
	for turn := 0; turn < 5; turn++ {
		if err := st.Append(sess.ID(), schema.UserMessage(fmt.Sprintf("turn-%d", turn))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		hist, err := st.History(sess.ID())
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(hist) <= lastLen {
			t.Fatalf("history shrank: %d -> %d", lastLen, len(hist))
		}
		lastLen = len(hist)
	}

	hist, _ := st.History(sess.ID())
	for i, msg := range hist {
		if want := fmt.Sprintf("turn-%d", i); msg.Content != want {
			t.Fatalf("history[%d] = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestConcurrentAppendsOnDistinctSessions(t *testing.T) {
	t.Parallel()

	st := NewStore()
	const sessions = 8
	const perSession = 20

	ids := make([]string, 0, sessions)
	for i := 0; i < sessions; i++ {
		sess, err := st.Create(fmt.Sprintf("C%03d", i))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, sess.ID())
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < perSession; j++ {
				_ = st.Append(id, schema.UserMessage(fmt.Sprintf("m-%d", j)))
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		hist, err := st.History(id)
		if err != nil {
			t.Fatalf("History(%s) error = %v", id, err)
		}
		if len(hist) != perSession {
			t.Fatalf("session %s has %d messages, want %d", id, len(hist), perSession)
		}
	}
}
