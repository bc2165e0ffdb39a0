// Package agentcore implements the shared agent lifecycle engine: the
// state machine, completion-signal detection, and the send/send_streaming/
// reset_conversation contracts used by both the Supervisor and Servitor
// variants.
package agentcore

// State is the discrete lifecycle value of an agent.
type State string

const (
	Idle      State = "idle"
	Working   State = "working"
	Waiting   State = "waiting"
	Verifying State = "verifying"
	Done      State = "done"
	Error     State = "error"
)

// Terminal reports whether s is a terminal state: once reached, no
// subsequent transition changes it.
func (s State) Terminal() bool {
	return s == Done
}
