// Package publish implements the published/published_at lifecycle shared by
// artists, artworks, editions, events and posts.
package publish

import "time"

// State is the lifecycle pair stored on every publishable row.
type State struct {
	Published   bool
	PublishedAt *time.Time
}

// Apply computes the state after a request that may or may not set the
// published flag. A nil request leaves the state untouched, and publishing
// an already-published row keeps its original timestamp.
func Apply(current State, requested *bool, now time.Time) State {
	if requested == nil {
		return current
	}
	if !*requested {
		return State{}
	}
	if current.Published {
		return current
	}
	at := now.UTC()
	return State{Published: true, PublishedAt: &at}
}

// Toggle flips the flag through the same transitions as Apply.
func Toggle(current State, now time.Time) State {
	next := !current.Published
	return Apply(current, &next, now)
}

// Initial is the state of a freshly created row.
func Initial(requested *bool, now time.Time) State {
	return Apply(State{}, requested, now)
}
