package google

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kwerner/anvil"
)

// callIDSeparator joins the part index and function name into a call id.
// Gemini does not issue call ids, but the protocol matches results to calls
// by id, so one is synthesized that also preserves the function name.
const callIDSeparator = "__"

func extractToolCalls(parts []*genai.Part) []anvil.ToolCall {
	var calls []anvil.ToolCall
	for i, part := range parts {
		if part.FunctionCall == nil {
			continue
		}
		args, _ := json.Marshal(part.FunctionCall.Args)
		calls = append(calls, anvil.ToolCall{
			ID:        fmt.Sprintf("call_%d%s%s", i, callIDSeparator, part.FunctionCall.Name),
			Name:      part.FunctionCall.Name,
			Arguments: args,
		})
	}
	return calls
}

func functionNameFromCallID(id string) string {
	if idx := strings.LastIndex(id, callIDSeparator); idx >= 0 {
		return id[idx+len(callIDSeparator):]
	}
	return id
}
