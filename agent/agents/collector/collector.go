// Package collector runs one conversation turn of the collection call:
// model consultation, tool dispatch, and the final reply utterance.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/abcfin/collectcall/agent/contract"
	promptx "github.com/abcfin/collectcall/agent/prompt"
	statex "github.com/abcfin/collectcall/agent/state"
	toolx "github.com/abcfin/collectcall/agent/tool"
)

const (
	defaultMaxToolCalls = 8
	defaultTurnTimeout  = 60 * time.Second
)

// Collector drives the model loop for a single turn. The model's tool-call
// output is treated as a proposal: each call is validated against the
// session phase machine before it executes. All tool traffic is appended to
// history before the reply, so a failed turn still leaves an audit trail.
type Collector struct {
	model        contractx.ChatModel
	gateway      *toolx.Gateway
	systemPrompt string
	maxToolCalls int
	turnTimeout  time.Duration
}

type Option func(*Collector)

// WithMaxToolCalls caps tool invocations within one turn.
func WithMaxToolCalls(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxToolCalls = n
		}
	}
}

// WithTurnTimeout bounds the whole turn, model calls included.
func WithTurnTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.turnTimeout = d
		}
	}
}

// WithSystemPrompt overrides the embedded persona prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Collector) {
		if strings.TrimSpace(prompt) != "" {
			c.systemPrompt = strings.TrimSpace(prompt)
		}
	}
}

func New(model contractx.ChatModel, gateway *toolx.Gateway, opts ...Option) (*Collector, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if gateway == nil {
		return nil, errors.New("tool gateway is required")
	}

	c := &Collector{
		model:        model,
		gateway:      gateway,
		systemPrompt: promptx.Collector(),
		maxToolCalls: defaultMaxToolCalls,
		turnTimeout:  defaultTurnTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Turn consults the model with the session history, executes admitted tool
// calls, and returns the final reply utterance. The caller must hold the
// session's turn lock.
func (c *Collector) Turn(ctx context.Context, sess *statex.Session) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.turnTimeout)
	defer cancel()

	toolBudget := c.maxToolCalls
	for {
		input := make([]*schema.Message, 0, sess.Len()+1)
		input = append(input, schema.SystemMessage(c.systemPrompt))
		input = append(input, sess.History()...)

		out, err := c.model.Generate(ctx, input)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", contractx.ErrAgentTimeout, err)
			}
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if out == nil {
			return "", fmt.Errorf("%w: model returned nil message", contractx.ErrSchemaViolation)
		}

		if len(out.ToolCalls) == 0 {
			reply := strings.TrimSpace(out.Content)
			if reply == "" {
				return "", fmt.Errorf("%w: model returned empty reply", contractx.ErrSchemaViolation)
			}
			sess.Append(schema.AssistantMessage(reply, nil))
			return reply, nil
		}

		// Proposal and results land in history before the next model
		// consultation, failed turns included.
		sess.Append(out)

		for _, raw := range out.ToolCalls {
			if toolBudget <= 0 {
				return "", fmt.Errorf("%w: more than %d tool calls in one turn", contractx.ErrToolLoopExceeded, c.maxToolCalls)
			}
			toolBudget--

			resultMsg, err := c.dispatch(ctx, sess, raw)
			if err != nil {
				return "", err
			}
			sess.Append(resultMsg)
		}
	}
}

// dispatch parses, admits, and executes one proposed tool call. Rejections
// and recoverable tool failures become tool-result messages the model can
// handle conversationally; only infrastructure failures return a Go error.
func (c *Collector) dispatch(ctx context.Context, sess *statex.Session, raw schema.ToolCall) (*schema.Message, error) {
	call, err := toolx.Parse(raw)
	if err != nil {
		log.Warn().
			Str("session_id", sess.ID()).
			Str("tool", raw.Function.Name).
			Err(err).
			Msg("rejecting malformed tool call")
		return resultMessage(raw, contractx.ToolResult{
			Tool:  raw.Function.Name,
			Error: "malformed tool call, try again",
		})
	}

	if err := sess.Admit(call); err != nil {
		log.Warn().
			Str("session_id", sess.ID()).
			Str("tool", call.ToolName()).
			Str("phase", string(sess.Phase())).
			Err(err).
			Msg("rejecting out-of-phase tool call")
		return resultMessage(raw, contractx.ToolResult{
			Tool:  call.ToolName(),
			Error: "that action is not allowed at this point of the call",
		})
	}

	result, err := c.gateway.Execute(ctx, call)
	if err != nil {
		return nil, err
	}
	if result.Error == "" {
		sess.Advance(call)
	}
	return resultMessage(raw, result)
}

func resultMessage(raw schema.ToolCall, result contractx.ToolResult) (*schema.Message, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tool result: %v", contractx.ErrValidation, err)
	}
	return schema.ToolMessage(string(payload), raw.ID), nil
}
