package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/orcherr"
)

type fakeAgent struct {
	id   string
	name string
}

func (f fakeAgent) ID() string   { return f.id }
func (f fakeAgent) Name() string { return f.name }

func TestRegister_DuplicateNameRejected(t *testing.T) {
	reg := New(event.NewBus())

	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))
	err := reg.Register(fakeAgent{id: "2", name: "A"})

	var nameErr *orcherr.NameAlreadyExistsError
	assert.ErrorAs(t, err, &nameErr)
}

func TestRegister_PublishesAddedEvent(t *testing.T) {
	bus := event.NewBus()
	reg := New(bus)

	var received event.AgentAddedData
	done := make(chan struct{})
	bus.Subscribe(event.AgentAdded, func(e event.Event) {
		received = e.Data.(event.AgentAddedData)
		close(done)
	})

	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))
	<-done

	assert.Equal(t, "1", received.ID)
	assert.Equal(t, "A", received.Name)
}

func TestRemove_UnknownIDErrors(t *testing.T) {
	reg := New(event.NewBus())

	err := reg.Remove("nope")
	var notFound *orcherr.AgentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRemove_ThenRegisterRestoresOriginalState(t *testing.T) {
	reg := New(event.NewBus())
	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))

	require.NoError(t, reg.Remove("1"))

	assert.Equal(t, 0, reg.Count())
	assert.False(t, reg.IsNameTaken("A"))

	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))
	assert.Equal(t, 1, reg.Count())
}

func TestGetByName_SuggestsClosestMatch(t *testing.T) {
	reg := New(event.NewBus())
	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "Alchemist"}))

	_, err := reg.GetByName("Alchemits")
	var notFound *orcherr.AgentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Alchemist", notFound.Suggestion)
}

func TestAll_DistinctNamesAndIDs(t *testing.T) {
	reg := New(event.NewBus())
	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))
	require.NoError(t, reg.Register(fakeAgent{id: "2", name: "B"}))

	agents := reg.All()
	require.Len(t, agents, 2)

	seenNames := map[string]bool{}
	seenIDs := map[string]bool{}
	for _, a := range agents {
		assert.False(t, seenNames[a.Name()])
		assert.False(t, seenIDs[a.ID()])
		seenNames[a.Name()] = true
		seenIDs[a.ID()] = true
	}
}

func TestClear(t *testing.T) {
	reg := New(event.NewBus())
	require.NoError(t, reg.Register(fakeAgent{id: "1", name: "A"}))

	reg.Clear()

	assert.Equal(t, 0, reg.Count())
	_, err := reg.Get("1")
	assert.Error(t, err)
}

func TestConcurrentRegister_NoDuplicates(t *testing.T) {
	reg := New(event.NewBus())

	const n = 50
	var wg sync.WaitGroup
	successes := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := reg.Register(fakeAgent{id: fmt.Sprintf("id-%d", i), name: "shared"})
			successes[i] = err == nil
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one registration with a shared name should succeed")
	assert.Equal(t, 1, reg.Count())
}
