// Package auth owns the authentication state for the process.
//
// [Context] replaces ambient globals with an owned object: it holds the
// nullable current identity, notifies subscribers on sign-in and sign-out
// transitions, and has an explicit teardown. The preset engine treats a
// signed-in → nil transition as its logout trigger.
package auth

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Identity is an authenticated account.
type Identity struct {
	ID    string
	Email string
}

// Listener observes identity transitions. Either argument may be nil.
type Listener func(old, new *Identity)

// Context holds the current identity and its subscribers.
type Context struct {
	mu        sync.RWMutex
	current   *Identity
	listeners []Listener
	closed    bool
	logger    *log.Logger
}

// NewContext creates an empty (signed-out) authentication context.
func NewContext(logger *log.Logger) *Context {
	return &Context{logger: logger}
}

// Current returns the signed-in identity, or nil.
func (c *Context) Current() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// CurrentID returns the signed-in account id, or "" when signed out.
func (c *Context) CurrentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.ID
}

// Subscribe registers a transition listener. Listeners run synchronously, in
// registration order, on the goroutine that triggered the transition.
func (c *Context) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.listeners = append(c.listeners, fn)
}

// SignIn records the identity and notifies subscribers.
func (c *Context) SignIn(identity Identity) {
	c.transition(&identity)
}

// SignOut clears the identity and notifies subscribers.
func (c *Context) SignOut() {
	c.transition(nil)
}

// Close drops all listeners. Subsequent transitions notify nobody.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.listeners = nil
}

func (c *Context) transition(to *Identity) {
	c.mu.Lock()
	from := c.current
	c.current = to
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	if c.logger != nil {
		if to != nil {
			c.logger.Info("signed in", "user", to.ID)
		} else if from != nil {
			c.logger.Info("signed out", "user", from.ID)
		}
	}

	for _, fn := range listeners {
		fn(from, to)
	}
}
