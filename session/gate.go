// Package session tracks who is signed in and guards page views that need a
// signed in user.
package session

import (
	"net/http"
	"sync"

	"github.com/sparkbytes/sparkbytes/auth"
)

// Cell is an observable session value. It starts unresolved; Publish sets
// the current user (nil for signed out) and notifies subscribers.
type Cell struct {
	mu       sync.Mutex
	resolved bool
	user     *auth.Info
	subs     map[int]func(*auth.Info)
	next     int
}

// NewCell returns an unresolved Cell.
func NewCell() *Cell {
	return &Cell{subs: map[int]func(*auth.Info){}}
}

// Publish records a session change and notifies every subscriber.
func (c *Cell) Publish(user *auth.Info) {
	c.mu.Lock()
	c.resolved = true
	c.user = user
	subs := make([]func(*auth.Info), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}

// Subscribe registers fn for session changes. If the cell is already
// resolved fn is called right away with the current value. The returned
// function removes the subscription; calling it more than once is safe.
func (c *Cell) Subscribe(fn func(*auth.Info)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = fn
	resolved, user := c.resolved, c.user
	c.mu.Unlock()

	if resolved {
		fn(user)
	}

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Subscribers returns the number of live subscriptions.
func (c *Cell) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// State is what a Gate exposes. Resolving is true until the first session
// notification arrives.
type State struct {
	User      *auth.Info
	Resolving bool
}

// Gate follows a Cell through a single subscription.
type Gate struct {
	mu          sync.Mutex
	state       State
	resolved    chan struct{}
	once        sync.Once
	unsubscribe func()
	unmount     sync.Once
}

// Mount subscribes a new Gate to c. Call Unmount to release the
// subscription.
func Mount(c *Cell) *Gate {
	g := &Gate{
		state:    State{Resolving: true},
		resolved: make(chan struct{}),
	}
	g.unsubscribe = c.Subscribe(g.update)
	return g
}

func (g *Gate) update(user *auth.Info) {
	g.mu.Lock()
	g.state = State{User: user}
	g.mu.Unlock()

	g.once.Do(func() { close(g.resolved) })
}

// State returns the current session state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolved is closed when the first notification arrives.
func (g *Gate) Resolved() <-chan struct{} {
	return g.resolved
}

// Unmount releases the gate's subscription.
func (g *Gate) Unmount() {
	g.unmount.Do(g.unsubscribe)
}

// Resolve starts identifying the user behind r and returns the Cell the
// result is published to. Provider errors, including rejected domains,
// resolve to no user; they are returned on the channel for logging.
func Resolve(p auth.Provider, r *http.Request) (*Cell, <-chan error) {
	c := NewCell()
	errc := make(chan error, 1)
	go func() {
		info, err := p.FromRequest(r)
		errc <- err
		if err != nil || info.ID == "" {
			c.Publish(nil)
			return
		}
		c.Publish(&info)
	}()
	return c, errc
}
