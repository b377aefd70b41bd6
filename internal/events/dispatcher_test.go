package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToAllHandlersDespiteErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var order []string
	d.Subscribe(EventSignedIn, func(context.Context, Event) error {
		order = append(order, "first")
		return errors.New("sink down")
	})
	d.Subscribe(EventSignedIn, func(_ context.Context, e Event) error {
		order = append(order, "second:"+e.Email)
		return nil
	})
	d.Subscribe(EventSignedOut, func(context.Context, Event) error {
		order = append(order, "wrong")
		return nil
	})

	ev := New(EventSignedIn)
	ev.Email = "ana@example.com"
	require.NoError(t, d.Publish(context.Background(), ev))

	assert.Equal(t, []string{"first", "second:ana@example.com"}, order)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestNop(t *testing.T) {
	var d Dispatcher = Nop{}
	d.Subscribe(EventSignedIn, func(context.Context, Event) error { return nil })
	assert.NoError(t, d.Publish(context.Background(), New(EventSignedIn)))
}
