package agent

import (
	"encoding/json"

	"github.com/kwerner/anvil"
)

// StopReason explains why a run ended.
type StopReason string

const (
	// StopFinal means the reasoner produced a response with no tool calls.
	StopFinal StopReason = "final"

	// StopMaxTurns means the turn budget ran out before a final response.
	StopMaxTurns StopReason = "max_iterations"
)

// CallRecord is one executed tool call, in request order.
type CallRecord struct {
	Name    string
	Input   json.RawMessage
	Result  string
	IsError bool
}

// Result is the outcome of a completed run.
type Result struct {
	// Content is the final assistant text.
	Content string

	// Turns is the number of reasoner calls made.
	Turns int

	// Calls records every executed tool call across all turns, ordered.
	Calls []CallRecord

	// Usage is the summed token usage across all turns.
	Usage anvil.Usage

	// StopReason is why the run ended.
	StopReason StopReason

	history []anvil.Message
}

// Messages returns the full transcript, including the initial messages and
// every assistant tool-request and tool-result message appended during the
// run.
func (r *Result) Messages() []anvil.Message {
	return r.history
}
