package damping

import (
	"fmt"

	"github.com/hashicorp/memberlist"
)

// Address is the opaque, stable identifier of a cluster member: a
// host:port string, used as an equality key with no structure assumed
// beyond total-order hashing. Using a defined type instead of a bare string
// keeps addresses from being confused with arbitrary strings at call sites.
type Address string

// Member is a cluster member as seen by the damping subprotocol: just
// enough to key a set and read a damp score. The gossip transport and
// failure detector that actually maintain membership are out of this
// module's scope (spec §1); Member only exposes what the damper reads.
type Member interface {
	Address() Address
	DampScore() float64
}

// NodeMember grounds Member in hashicorp/memberlist's own SWIM node
// representation rather than a bare string, since memberlist is this
// ecosystem's real gossip membership implementation. Pingable is carried
// for Membership implementations; nothing in this package reads it.
type NodeMember struct {
	Node     *memberlist.Node
	Pingable bool
	Score    float64
}

// NewNodeMember builds a NodeMember whose Address is derived the same way
// memberlist identifies a node: "ip:port".
func NewNodeMember(node *memberlist.Node, score float64) *NodeMember {
	return &NodeMember{Node: node, Pingable: true, Score: score}
}

func (m *NodeMember) Address() Address {
	if m.Node == nil {
		return ""
	}
	return Address(fmt.Sprintf("%s:%d", m.Node.Addr.String(), m.Node.Port))
}

func (m *NodeMember) DampScore() float64 {
	return m.Score
}

// Change is a single gossiped membership update, piggybacked on a
// damp-request response per spec §3/§4.3. The damper treats it as opaque
// payload to hand to Membership.Update; it never interprets the contents.
type Change struct {
	Address Address
	Payload interface{}
}

// Membership is the external collaborator the damp controller reads from
// and writes to (spec §6). It is implemented by the membership table,
// which is out of scope here; this module only calls into it.
type Membership interface {
	// GetRandomPingableMembers returns up to n live members not present in
	// excluding, used to pick damp-request observers.
	GetRandomPingableMembers(n int, excluding map[Address]struct{}) []Member

	// FindMemberByAddress returns the member at addr, or nil if absent.
	FindMemberByAddress(addr Address) Member

	// MakeDamped marks addr as damped in the membership table. Idempotent.
	MakeDamped(addr Address)

	// Update applies gossiped changes to the membership table.
	Update(changes []Change)

	// GetDampedPercentage returns the fraction, in [0,1], of the cluster
	// currently marked damped.
	GetDampedPercentage() float64
}
