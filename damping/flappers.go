package damping

import (
	"sync"
	"time"

	"github.com/dachinzo/ringpop-node/logging"
)

// Flapper is a suspected-flapper entry: an address and when it was first
// reported to the damper. Created by AddFlapper, removed by RemoveFlapper
// or implicitly when the controller commits it to the Damped Set.
type Flapper struct {
	Address    Address
	ObservedAt time.Time
}

// FlapperSet is the in-memory set of addresses the local node is currently
// tracking as suspected flappers (spec §4.1). It enforces invariant I1
// (disjoint from Damped) by consulting damped before inserting, and drives
// the damp timer's start/stop transitions (I5) via onNonEmpty/onEmpty.
type FlapperSet struct {
	mu  sync.RWMutex
	set map[Address]Flapper

	damped *DampedSet
	log    logging.Logger

	onNonEmpty func()
	onEmpty    func()
}

// NewFlapperSet builds a FlapperSet guarding against damped, logging
// through log, and invoking onNonEmpty/onEmpty exactly at the 0→1 and 1→0
// size transitions.
func NewFlapperSet(damped *DampedSet, log logging.Logger, onNonEmpty, onEmpty func()) *FlapperSet {
	if log == nil {
		log = logging.Nop()
	}
	return &FlapperSet{
		set:        make(map[Address]Flapper),
		damped:     damped,
		log:        log,
		onNonEmpty: onNonEmpty,
		onEmpty:    onEmpty,
	}
}

// AddFlapper is idempotent: a flapper already in the Damped Set or already
// tracked here is a silent no-op. Otherwise it is inserted, and if this
// transition takes the set from empty to non-empty, the damp timer starts.
func (f *FlapperSet) AddFlapper(flapper Flapper) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.damped != nil && f.damped.Contains(flapper.Address) {
		f.log.Debug("ignoring flapper already damped", logging.Fields{"flapper": string(flapper.Address)})
		return
	}

	if _, ok := f.set[flapper.Address]; ok {
		f.log.Debug("ignoring already-tracked flapper", logging.Fields{"flapper": string(flapper.Address)})
		return
	}

	wasEmpty := len(f.set) == 0
	f.set[flapper.Address] = flapper

	if wasEmpty && f.onNonEmpty != nil {
		f.onNonEmpty()
	}
}

// RemoveFlapper stops tracking addr. Absent is a silent no-op; removing
// the last entry stops the damp timer.
func (f *FlapperSet) RemoveFlapper(addr Address) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.set[addr]; !ok {
		f.log.Debug("ignoring removal of untracked flapper", logging.Fields{"flapper": string(addr)})
		return
	}

	delete(f.set, addr)

	if len(f.set) == 0 && f.onEmpty != nil {
		f.onEmpty()
	}
}

// Count returns the number of tracked flappers.
func (f *FlapperSet) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.set)
}

// Contains reports whether addr is currently tracked as a flapper.
func (f *FlapperSet) Contains(addr Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.set[addr]
	return ok
}

// Addresses returns the tracked addresses in unspecified order.
func (f *FlapperSet) Addresses() []Address {
	f.mu.RLock()
	defer f.mu.RUnlock()

	res := make([]Address, 0, len(f.set))
	for a := range f.set {
		res = append(res, a)
	}
	return res
}
