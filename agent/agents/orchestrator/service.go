// Package orchestrator exposes the call-session entry points used by the
// transport layer: starting a new collection call and continuing one.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	collectorx "github.com/abcfin/collectcall/agent/agents/collector"
	contractx "github.com/abcfin/collectcall/agent/contract"
	promptx "github.com/abcfin/collectcall/agent/prompt"
	statex "github.com/abcfin/collectcall/agent/state"
)

// Orchestrator decides whether a request starts a new call or continues an
// existing one, drives the collector for exactly one turn, and keeps the
// session store consistent. One turn runs per session at a time.
type Orchestrator struct {
	store     *statex.Store
	collector *collectorx.Collector
	directory contractx.Directory

	now func() time.Time
}

func New(store *statex.Store, collector *collectorx.Collector, directory contractx.Directory) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if collector == nil {
		return nil, errors.New("collector agent is required")
	}
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}
	return &Orchestrator{
		store:     store,
		collector: collector,
		directory: directory,
		now:       time.Now,
	}, nil
}

// StartCall creates a session for customerID, seeds it with the internal
// opening instruction, and runs the greeting turn.
func (o *Orchestrator) StartCall(ctx context.Context, customerID string) (string, string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", "", contractx.ErrInvalidCustomer
	}
	if _, err := o.directory.Lookup(ctx, customerID); err != nil {
		if errors.Is(err, contractx.ErrCustomerNotFound) || errors.Is(err, contractx.ErrInvalidCustomer) {
			return "", "", fmt.Errorf("%w: %s", contractx.ErrInvalidCustomer, customerID)
		}
		return "", "", err
	}

	sess, err := o.store.Create(customerID)
	if err != nil {
		return "", "", err
	}

	sess.LockTurn()
	defer sess.UnlockTurn()

	sess.Append(schema.SystemMessage(promptx.Opening(customerID)))

	reply, err := o.runTurn(ctx, sess, "start")
	if err != nil {
		return "", "", err
	}
	return sess.ID(), reply, nil
}

// ContinueCall appends the caller's message to an existing session and runs
// one turn. Unknown identifiers fail before any state is touched.
func (o *Orchestrator) ContinueCall(ctx context.Context, sessionID, userText string) (string, string, error) {
	sess, err := o.store.Get(sessionID)
	if err != nil {
		return "", "", err
	}

	sess.LockTurn()
	defer sess.UnlockTurn()

	sess.Append(schema.UserMessage(userText))

	reply, err := o.runTurn(ctx, sess, "continue")
	if err != nil {
		return "", "", err
	}
	return sess.ID(), reply, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, sess *statex.Session, kind string) (string, error) {
	started := o.now()
	historyBefore := sess.Len()

	reply, err := o.collector.Turn(ctx, sess)

	evt := log.Info()
	if err != nil {
		evt = log.Error().Err(err)
	}
	evt.
		Str("turn", kind).
		Str("session_id", sess.ID()).
		Str("customer_id", sess.CustomerID()).
		Str("phase", string(sess.Phase())).
		Int("messages_appended", sess.Len()-historyBefore).
		Dur("duration", o.now().Sub(started)).
		Msg("call turn")

	return reply, err
}
