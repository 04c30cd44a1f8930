package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliver_NoConnection(t *testing.T) {
	r := NewRegistry()

	delivered := r.Deliver("user-1", []byte(`{"type":"warning"}`))

	assert.False(t, delivered)
}

func TestDeliver_RoutesToChannel(t *testing.T) {
	r := NewRegistry()
	ch := make(chan []byte, 1)
	r.Register("user-1", ch)

	delivered := r.Deliver("user-1", []byte("hello"))

	assert.True(t, delivered)
	assert.Equal(t, []byte("hello"), <-ch)
}

func TestRegister_ReplacesExistingConnection(t *testing.T) {
	r := NewRegistry()
	c1 := make(chan []byte, 1)
	c2 := make(chan []byte, 1)

	r.Register("user-1", c1)
	r.Register("user-1", c2)

	delivered := r.Deliver("user-1", []byte("payload"))

	assert.True(t, delivered)
	assert.Equal(t, []byte("payload"), <-c2)
	assert.Empty(t, c1, "displaced channel must not receive deliveries")
}

func TestRemove_OnlyMatchingChannel(t *testing.T) {
	r := NewRegistry()
	c1 := make(chan []byte, 1)
	c2 := make(chan []byte, 1)

	r.Register("user-1", c1)
	r.Register("user-1", c2)

	// A stale session tearing down after being replaced must not evict
	// the replacement.
	r.Remove("user-1", c1)
	assert.True(t, r.Connected("user-1"))

	r.Remove("user-1", c2)
	assert.False(t, r.Connected("user-1"))
}

func TestRemove_AbsentUserIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Remove("ghost", make(chan []byte))
}

func TestDeliver_FullBufferDeregisters(t *testing.T) {
	r := NewRegistry()
	ch := make(chan []byte) // unbuffered and never drained
	r.Register("user-1", ch)

	delivered := r.Deliver("user-1", []byte("dropped"))

	assert.False(t, delivered)
	assert.False(t, r.Connected("user-1"), "a stalled session should be deregistered")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := make(chan []byte, 1)
			r.Register("user-1", ch)
			r.Remove("user-1", ch)
		}()
		go func() {
			defer wg.Done()
			r.Deliver("user-1", []byte("x"))
		}()
	}
	wg.Wait()
}
