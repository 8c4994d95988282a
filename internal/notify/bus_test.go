package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesSubscribers(t *testing.T) {
	b := NewBus()

	var got []Signal
	cancel := b.Subscribe(KindIssue, func(s Signal) { got = append(got, s) })
	defer cancel()

	b.Emit(Signal{Kind: KindIssue, ID: "i1"})
	b.Emit(Signal{Kind: KindProject, ID: "p1"}) // different kind, not delivered

	assert.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	b := NewBus()

	calls := 0
	cancel := b.Subscribe(KindIssue, func(Signal) { calls++ })

	b.Emit(Signal{Kind: KindIssue, ID: "i1"})
	cancel()
	b.Emit(Signal{Kind: KindIssue, ID: "i2"})

	assert.Equal(t, 1, calls, "no delivery after teardown")
}

func TestBus_MultipleSubscribers(t *testing.T) {
	b := NewBus()

	a, c := 0, 0
	defer b.Subscribe(KindIssue, func(Signal) { a++ })()
	defer b.Subscribe(KindIssue, func(Signal) { c++ })()

	b.Emit(Signal{Kind: KindIssue, ID: "i1"})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, c)
}
