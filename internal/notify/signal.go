// Package notify lets independently-running views learn that something
// changed, without a shared store or a server push channel. Signals carry
// identity only; receivers re-fetch rather than trusting a payload, so
// delivery is at-least-once, unordered, and self-healing.
package notify

import "time"

// Kind classifies what kind of record a signal refers to.
type Kind string

const (
	KindIssue   Kind = "issue"
	KindProject Kind = "project"
)

// Verb distinguishes creation from mutation. It only affects the marker
// key used on the cross-process path; receivers treat both the same way.
type Verb string

const (
	VerbCreated Verb = "created"
	VerbUpdated Verb = "updated"
)

// Signal is a lightweight change notification: a cache-invalidation hint,
// never authoritative data.
type Signal struct {
	Kind Kind      `json:"kind"`
	Verb Verb      `json:"verb"`
	ID   string    `json:"id"`
	At   time.Time `json:"t"`
}

// Handler receives signals for the lifetime of a subscription.
type Handler func(Signal)
