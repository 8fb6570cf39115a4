// Package orchestrate drives a single user turn through the completion API:
// an inner truncation-escalation loop nested inside an outer file-request
// negotiation loop, expressed as an explicit state machine so the loop
// interaction is testable without I/O.
package orchestrate

// State names the orchestrator's position in a turn.
type State int

const (
	// StateIdle is the rest state between turns.
	StateIdle State = iota
	// StateAwaitingResponse means a completion request is in flight.
	StateAwaitingResponse
	// StateEscalating means the last reply was truncated and the request is
	// being re-issued with a doubled token budget.
	StateEscalating
	// StateNegotiatingFiles means the last reply was a valid file request and
	// the transcript is being rewritten for another outer pass.
	StateNegotiatingFiles
	// StateDone means the turn produced a final transcript mutation.
	StateDone
	// StateFailed means the turn hit a terminal error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateEscalating:
		return "escalating"
	case StateNegotiatingFiles:
		return "negotiating_files"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Token budget levels scale a fixed base by powers of two.
const (
	baseTokens = 1024
	// DefaultLevel yields 4096 tokens, the original tool's default budget.
	DefaultLevel = 2
	// DefaultMaxLevel caps escalation at 131072 tokens.
	DefaultMaxLevel = 7
)

// TokensForLevel converts a budget level to a max-output-token count. Each
// level doubles the budget.
func TokensForLevel(level int) int {
	if level < 0 {
		level = 0
	}
	return baseTokens << level
}
