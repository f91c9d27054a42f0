// Package watch layers incremental rebundling on the bundler: it reacts to
// front-end program rebuilds and external-source changes, coalesces bursts
// through a debounce window, and suppresses emission when the output did not
// change.
package watch

import (
	"bytes"
	"sync"
	"time"

	"github.com/frida/frida-compile/internal/bundler"
	"github.com/frida/frida-compile/internal/compiler"
	"github.com/frida/frida-compile/internal/system"
)

// DebounceDelay is how long after the last change event a rebundle waits.
// Editors and package managers touch files in bursts; one pass covers them.
const DebounceDelay = 250 * time.Millisecond

// Phase is the controller's state.
type Phase int

const (
	// PhaseIdle: no changes pending, no pass running.
	PhaseIdle Phase = iota
	// PhaseDebouncing: changes arrived, the debounce timer is running.
	PhaseDebouncing
	// PhaseBundling: a pass is in flight.
	PhaseBundling
	// PhaseBundlingDirty: a pass is in flight and changes arrived since it
	// started; another pass follows immediately.
	PhaseBundlingDirty
)

// Controller drives rebundling. Events: an external-source change, the
// debounce timer elapsing, a front-end program rebuild, a finished pass,
// and cancellation. At most one pass is ever in flight.
type Controller struct {
	sys      system.System
	bundler  *bundler.Bundler
	frontEnd compiler.WatchFrontEnd

	// OnCompilationStarting fires each time the front-end reports a newly
	// created program; OnCompilationFinished after every pass, successful
	// or not.
	OnCompilationStarting func()
	OnCompilationFinished func()
	// OnBundleUpdated fires only when the new bundle differs byte-for-byte
	// from the previous one.
	OnBundleUpdated func([]byte)
	// OnError receives pass failures. The previous bundle stays in place.
	OnError func(error)

	mu       sync.Mutex
	phase    Phase
	timer    system.Timer
	previous []byte
	watches  map[string]system.Watch
	stopped  bool
}

// New wires a controller to a bundler and a watch front end. The bundler's
// external-source events feed the controller's watch subscriptions.
func New(sys system.System, b *bundler.Bundler, frontEnd compiler.WatchFrontEnd) *Controller {
	c := &Controller{
		sys:      sys,
		bundler:  b,
		frontEnd: frontEnd,
		watches:  make(map[string]system.Watch),
	}
	b.OnExternalSourceAdded = c.handleExternalSourceAdded
	return c
}

// Start begins watching. The front-end's initial program build triggers the
// first pass.
func (c *Controller) Start() error {
	return c.frontEnd.Start(c.handleProgramCreate)
}

// Stop cancels the controller: the front-end watcher, the debounce timer,
// and every external-source subscription.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	watches := c.watches
	c.watches = make(map[string]system.Watch)
	c.mu.Unlock()

	c.frontEnd.Stop()
	for _, w := range watches {
		w.Close()
	}
}

// Phase returns the controller's current state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// handleProgramCreate runs when the front-end built a program: report the
// compilation start and schedule a pass on the next tick, leaving the
// front-end's callback stack first.
func (c *Controller) handleProgramCreate() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	starting := c.OnCompilationStarting
	c.mu.Unlock()

	if starting != nil {
		starting()
	}
	c.sys.After(0, c.rebundle)
}

// handleExternalSourceAdded subscribes a file watch for a discovered
// dependency. Watches persist across passes; duplicates are skipped.
func (c *Controller) handleExternalSourceAdded(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if _, ok := c.watches[path]; ok {
		return
	}
	w, err := c.sys.WatchFile(path, c.handleFileChange)
	if err != nil {
		return
	}
	c.watches[path] = w
}

// handleFileChange marks the graph dirty, invalidates the module, and
// resets the debounce window. A change during a running pass flips it to
// dirty so a follow-up pass picks the change up.
func (c *Controller) handleFileChange(ev system.FileEvent) {
	c.bundler.Invalidate(ev.Path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	switch c.phase {
	case PhaseIdle, PhaseDebouncing:
		c.phase = PhaseDebouncing
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = c.sys.After(DebounceDelay, c.handleDebounce)
	case PhaseBundling:
		c.phase = PhaseBundlingDirty
	case PhaseBundlingDirty:
	}
}

// handleDebounce fires when the window closes without further changes.
func (c *Controller) handleDebounce() {
	c.mu.Lock()
	c.timer = nil
	if c.phase != PhaseDebouncing || c.stopped {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.rebundle()
}

// rebundle runs one pass. Re-entrant triggers while a pass runs degrade to
// the dirty flag; the follow-up pass starts as soon as the current one
// finishes.
func (c *Controller) rebundle() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if c.phase == PhaseBundling || c.phase == PhaseBundlingDirty {
		c.phase = PhaseBundlingDirty
		c.mu.Unlock()
		return
	}
	c.phase = PhaseBundling
	c.mu.Unlock()

	bundle, err := c.bundler.Bundle()

	c.mu.Lock()
	var updated []byte
	if err == nil && !bytes.Equal(bundle, c.previous) {
		c.previous = bundle
		updated = bundle
	}
	dirty := c.phase == PhaseBundlingDirty
	c.phase = PhaseIdle
	onError := c.OnError
	onUpdated := c.OnBundleUpdated
	onFinished := c.OnCompilationFinished
	c.mu.Unlock()

	if err != nil && onError != nil {
		onError(err)
	}
	if updated != nil && onUpdated != nil {
		onUpdated(updated)
	}
	if onFinished != nil {
		onFinished()
	}

	if dirty {
		c.rebundle()
	}
}
