package notify

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier is the publish/subscribe service views share. It is constructed
// once at startup and handed to every view that needs it; there is no
// ambient global bus.
type Notifier struct {
	bus *Bus
	bc  *Broadcast
	log *logrus.Logger
}

// New creates a notifier whose cross-process channel lives under dir.
func New(dir string, log *logrus.Logger) (*Notifier, error) {
	bus := NewBus()
	bc, err := NewBroadcast(dir, log)
	if err != nil {
		return nil, err
	}
	if err := bc.Watch(bus); err != nil {
		return nil, err
	}
	return &Notifier{bus: bus, bc: bc, log: log}, nil
}

// NewInProcess creates a notifier without a cross-process channel. Used in
// tests and in short-lived commands that have no one to tell.
func NewInProcess() *Notifier {
	return &Notifier{bus: NewBus(), log: logrus.New()}
}

// Emit publishes sig to local subscribers and, best-effort, to other
// processes. A failed broadcast never fails the operation that emitted.
func (n *Notifier) Emit(sig Signal) {
	if sig.At.IsZero() {
		sig.At = time.Now().UTC()
	}
	if sig.Verb == "" {
		sig.Verb = VerbUpdated
	}

	n.bus.Emit(sig)

	if n.bc != nil {
		if err := n.bc.Publish(sig); err != nil {
			n.log.Warnf("notify: publish %s: %v", markerKey(sig), err)
		}
	}
}

// Subscribe registers h for signals of the given kind; the returned cancel
// func must be called on view teardown.
func (n *Notifier) Subscribe(kind Kind, h Handler) func() {
	return n.bus.Subscribe(kind, h)
}

// Close shuts down the cross-process channel.
func (n *Notifier) Close() error {
	if n.bc != nil {
		return n.bc.Close()
	}
	return nil
}
