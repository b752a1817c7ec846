package damping

import (
	"sync"
	"time"

	"github.com/dachinzo/ringpop-node/logging"
)

// DampedEntry is a committed damping: the address and the local monotonic
// time of commit, used to compute release (spec §3).
type DampedEntry struct {
	Address   Address
	Timestamp time.Time
}

// DampedSet is the in-memory set of addresses the local node has committed
// to treating as damped (spec §4.2). ExpireTick implements the release
// scan; per spec's §9/Q1 note, the "is the set now empty" check here
// compares length, not identity — the source's "compare an array to zero"
// bug is corrected rather than preserved (see DESIGN.md, Q1).
type DampedSet struct {
	mu sync.RWMutex
	set map[Address]DampedEntry

	suppressDuration time.Duration
	clock            Clock
	log              logging.Logger
	membership       Membership

	onNonEmpty func()
}

// NewDampedSet builds a DampedSet releasing entries after suppressDuration,
// invoking onNonEmpty the first time an entry is committed (spec: "if this
// is the first entry, arm the expiration timer").
func NewDampedSet(suppressDuration time.Duration, clock Clock, membership Membership, log logging.Logger, onNonEmpty func()) *DampedSet {
	if log == nil {
		log = logging.Nop()
	}
	return &DampedSet{
		set:              make(map[Address]DampedEntry),
		suppressDuration: suppressDuration,
		clock:            clock,
		membership:       membership,
		log:              log,
		onNonEmpty:       onNonEmpty,
	}
}

// Commit records addr as damped at the current time. Idempotent: a second
// Commit for the same address refreshes its timestamp but does not double
// the entry (spec L3: two overlapping rounds leave one entry).
func (d *DampedSet) Commit(addr Address) {
	d.mu.Lock()
	defer d.mu.Unlock()

	wasEmpty := len(d.set) == 0
	d.set[addr] = DampedEntry{Address: addr, Timestamp: d.clock.Now()}

	if wasEmpty && d.onNonEmpty != nil {
		d.onNonEmpty()
	}
}

// Contains reports whether addr is currently damped.
func (d *DampedSet) Contains(addr Address) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.set[addr]
	return ok
}

// Count returns the number of damped entries.
func (d *DampedSet) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.set)
}

// Addresses returns the damped addresses in unspecified order.
func (d *DampedSet) Addresses() []Address {
	d.mu.RLock()
	defer d.mu.RUnlock()

	res := make([]Address, 0, len(d.set))
	for a := range d.set {
		res = append(res, a)
	}
	return res
}

// Percentage asks Membership for the cluster's global damped fraction; the
// damper is not authoritative on cluster size (spec §4.2).
func (d *DampedSet) Percentage() float64 {
	if d.membership == nil {
		return 0
	}
	return d.membership.GetDampedPercentage()
}

// ExpireTick scans every entry and releases any whose suppress duration has
// elapsed, returning the released addresses. The caller (the controller) is
// responsible for re-arming or cancelling the expiration timer based on
// whether this set is now empty (spec §4.2/§9 Q1: the empty check must
// compare length, which is what IsEmpty does here).
func (d *DampedSet) ExpireTick() []Address {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	var released []Address

	for addr, entry := range d.set {
		if now.Sub(entry.Timestamp) >= d.suppressDuration {
			delete(d.set, addr)
			released = append(released, addr)
		}
	}

	return released
}

// IsEmpty reports whether no entries remain, used by the controller after
// ExpireTick to decide whether to cancel the expiration timer.
func (d *DampedSet) IsEmpty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.set) == 0
}
