package tool

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// Infos describes the three call-flow tools in the shape the chat model
// binds. Descriptions double as instructions: the model sees them verbatim.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: contractx.ToolLookupIdentity,
			Desc: "Fetch the customer's name for the given customer id so the call can open with an identity check.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id": {Type: schema.String, Desc: "Customer identifier for this call", Required: true},
			}),
		},
		{
			Name: contractx.ToolLookupLoanDetails,
			Desc: "After the caller confirms their identity, fetch the outstanding amount and due date. Pass the confirmed name.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id":   {Type: schema.String, Desc: "Customer identifier for this call", Required: true},
				"customer_name": {Type: schema.String, Desc: "Name the caller confirmed", Required: true},
			}),
		},
		{
			Name: contractx.ToolRecordCommitment,
			Desc: "Record the payment date the caller committed to. Call exactly once, only after a date was given.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id":     {Type: schema.String, Desc: "Customer identifier for this call", Required: true},
				"commitment_date": {Type: schema.String, Desc: "Promised payment date as spoken by the caller", Required: true},
			}),
		},
	}
}
