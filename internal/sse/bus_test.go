package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_bus(t *testing.T) {
	a := make(chan string, 8)
	b := make(chan string, 8)
	c := make(chan string, 8)

	bus := newBus[string]()
	assert.Equal(t, 0, bus.publish("foods"))
	bus.subscribe(a)
	bus.publish("recipes")
	bus.subscribe(b)
	bus.publish("allergens")
	bus.subscribe(c)
	bus.unsubscribe(a)
	bus.unsubscribe(a)
	bus.publish("workouts")
	assert.Equal(t, 2, bus.count())
	bus.reset()
	bus.publish("users")
	assert.Equal(t, 0, bus.count())

	assert.Equal(t, []string{"recipes", "allergens"}, drain(a))
	assert.Equal(t, []string{"allergens", "workouts"}, drain(b))
	assert.Equal(t, []string{"workouts"}, drain(c))
}

func Test_bus_publish_skips_full_buffers(t *testing.T) {
	slow := make(chan string, 1)
	fast := make(chan string, 8)

	bus := newBus[string]()
	bus.subscribe(slow)
	bus.subscribe(fast)

	assert.Equal(t, 0, bus.publish("created"))
	assert.Equal(t, 1, bus.publish("updated"))
	assert.Equal(t, 1, bus.publish("deleted"))

	assert.Equal(t, []string{"created"}, drain(slow))
	assert.Equal(t, []string{"created", "updated", "deleted"}, drain(fast))
}

func drain(ch chan string) []string {
	got := make([]string, 0)
	for {
		select {
		case s := <-ch:
			got = append(got, s)
		default:
			return got
		}
	}
}
