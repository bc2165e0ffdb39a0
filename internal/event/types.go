package event

// AgentAddedData is published when the spawner registers a new agent.
type AgentAddedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AgentRemovedData is published when the spawner dismisses an agent.
type AgentRemovedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AgentStateChangedData is published on every agent lifecycle transition.
type AgentStateChangedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// CommitmentVerifiedData is the payload type of CommitmentVerified events.
// commitment.VerifyAll does not publish them; no package in this module does.
type CommitmentVerifiedData struct {
	AgentID     string `json:"agentId"`
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
}
