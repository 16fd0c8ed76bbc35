package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// Parse turns a raw model tool call into its typed variant. The agent loop
// pattern-matches on the result instead of dispatching on open-ended names.
func Parse(call schema.ToolCall) (contractx.ToolCall, error) {
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	switch name {
	case contractx.ToolLookupIdentity:
		var out contractx.LookupIdentityCall
		if err := decodeArgs(name, call.Function.Arguments, &out); err != nil {
			return nil, err
		}
		return out, nil
	case contractx.ToolLookupLoanDetails:
		var out contractx.LookupLoanDetailsCall
		if err := decodeArgs(name, call.Function.Arguments, &out); err != nil {
			return nil, err
		}
		return out, nil
	case contractx.ToolRecordCommitment:
		var out contractx.RecordCommitmentCall
		if err := decodeArgs(name, call.Function.Arguments, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", contractx.ErrSchemaViolation, name)
	}
}

func decodeArgs(name, raw string, dst any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
	}
	return nil
}
