/*
Package event provides a pub/sub notification bus for registry and agent
state changes, one instance per Project.

Event Types

  - agent.added: a servitor was registered
  - agent.removed: a servitor was dismissed
  - agent.state_changed: an agent's lifecycle state transitioned
  - agent.commitment_verified: declared for commitment results; no package
    in this module publishes it

Usage

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.AgentAdded, func(e event.Event) {
	    data := e.Data.(event.AgentAddedData)
	    fmt.Println("added", data.Name)
	})
	defer unsubscribe()

	bus.PublishSync(event.Event{
	    Type: event.AgentAdded,
	    Data: event.AgentAddedData{ID: id, Name: name},
	})

Subscribers to PublishSync run on the caller's goroutine, matching the
presentation-thread rule: the UI subscribes once and mirrors state without
reading agent fields from another thread. Subscribers must not call
Publish/PublishSync re-entrantly and should complete quickly.
*/
package event
