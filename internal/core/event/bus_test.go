package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsArriveNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e EntityCreated) { got = append(got, e.ID) })

	Emit(b, EntityCreated{ID: "a"})
	b.DispatchAll()
	assert.Empty(t, got, "emitted events are not visible before the swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"a"}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"a"}, got, "events are delivered once")
}

func TestHandlersAreTyped(t *testing.T) {
	b := NewBus()
	saved, loaded := 0, 0
	Subscribe(b, func(SceneSaved) { saved++ })
	Subscribe(b, func(SceneLoaded) { loaded++ })

	Emit(b, SceneSaved{Path: "x.directus"})
	Emit(b, SceneSaved{Path: "y.directus"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 2, saved)
	assert.Equal(t, 0, loaded)
}

func TestEmitFromWorkers(t *testing.T) {
	b := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Emit(b, SceneCleared{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, b.Pending())
}

func TestNilBusEmitIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Emit[SceneCleared](nil, SceneCleared{}) })
}

func TestDeliveryKeepsEmissionOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e SceneSaved) { got = append(got, "saved "+e.Path) })
	Subscribe(b, func(e SceneLoaded) { got = append(got, "loaded "+e.Path) })

	Emit(b, SceneSaved{Path: "a"})
	Emit(b, SceneLoaded{Path: "a"})
	Emit(b, SceneSaved{Path: "b"})
	b.Flush()

	assert.Equal(t, []string{"saved a", "loaded a", "saved b"}, got)
	assert.Zero(t, b.Pending())
}

func TestHandlerEmitsWaitForNextSwap(t *testing.T) {
	b := NewBus()
	cleared := 0
	Subscribe(b, func(EntityRemoved) { Emit(b, SceneCleared{}) })
	Subscribe(b, func(SceneCleared) { cleared++ })

	Emit(b, EntityRemoved{ID: "x"})
	b.Flush()
	assert.Zero(t, cleared)
	assert.Equal(t, 1, b.Pending())

	b.Flush()
	assert.Equal(t, 1, cleared)
}
