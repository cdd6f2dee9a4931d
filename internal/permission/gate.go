// Package permission tracks per-capability approval state for one running
// session. Grants live for the process lifetime only and are never written
// to disk.
package permission

import "sync"

// Capability is a coarse permission class gating whole categories of tools.
type Capability string

const (
	CapabilityShell      Capability = "shell"
	CapabilityFileWrite  Capability = "file_write"
	CapabilityFileDelete Capability = "file_delete"
	CapabilityNetwork    Capability = "network"

	// CapabilityNone marks tools that need no grant (read-only operations).
	CapabilityNone Capability = ""
)

// State is the approval state for one capability.
type State struct {
	Granted     bool
	AutoApprove bool
}

// Gate holds the session's grants. One Gate instance per running session;
// construct a fresh one per session so concurrent sessions (e.g. under
// test) do not interfere.
type Gate struct {
	mu     sync.RWMutex
	states map[Capability]State
}

// NewGate creates a Gate with no grants.
func NewGate() *Gate {
	return &Gate{states: make(map[Capability]State)}
}

// MayExecute reports whether the capability is granted.
// CapabilityNone is always allowed.
func (g *Gate) MayExecute(capability Capability) bool {
	if capability == CapabilityNone {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.states[capability].Granted
}

// NeedsConfirmation reports whether the capability requires a user
// decision before an invocation may proceed.
func (g *Gate) NeedsConfirmation(capability Capability) bool {
	return !g.MayExecute(capability)
}

// RecordGrant marks a capability as granted for the rest of the session.
// Only explicit user confirmation should call this.
func (g *Gate) RecordGrant(capability Capability, autoApprove bool) {
	if capability == CapabilityNone {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[capability] = State{Granted: true, AutoApprove: autoApprove}
}

// Revoke clears a capability's grant.
func (g *Gate) Revoke(capability Capability) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, capability)
}

// Snapshot returns a copy of the current grant table for display.
func (g *Gate) Snapshot() map[Capability]State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[Capability]State, len(g.states))
	for c, s := range g.states {
		out[c] = s
	}
	return out
}
