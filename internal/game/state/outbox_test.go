package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxPushAndDrain(t *testing.T) {
	o := NewOutbox("s1", 4)

	require.NoError(t, o.Push("one"))
	require.NoError(t, o.Push("two"))
	assert.Equal(t, 2, o.Pending())

	assert.Equal(t, "one", <-o.Lines())
	assert.Equal(t, "two", <-o.Lines())
	assert.Zero(t, o.Pending())
}

func TestOutboxPushFailsWhenFull(t *testing.T) {
	o := NewOutbox("s1", 2)

	require.NoError(t, o.Push("one"))
	require.NoError(t, o.Push("two"))

	err := o.Push("three")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")

	// The queued lines are untouched.
	assert.Equal(t, 2, o.Pending())
}

func TestOutboxCloseIsIdempotent(t *testing.T) {
	o := NewOutbox("s1", 2)
	require.NoError(t, o.Push("one"))

	o.Close()
	o.Close()

	assert.True(t, o.IsClosed())
	assert.Error(t, o.Push("late"))

	// Already-queued lines drain, then the channel reports closed.
	line, ok := <-o.Lines()
	assert.True(t, ok)
	assert.Equal(t, "one", line)
	_, ok = <-o.Lines()
	assert.False(t, ok)
}

func TestOutboxPreservesPushOrder(t *testing.T) {
	o := NewOutbox("s1", 16)
	for i := 0; i < 10; i++ {
		require.NoError(t, o.Push(fmt.Sprintf("line-%d", i)))
	}
	o.Close()

	i := 0
	for line := range o.Lines() {
		assert.Equal(t, fmt.Sprintf("line-%d", i), line)
		i++
	}
	assert.Equal(t, 10, i)
}
