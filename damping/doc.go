// Package damping implements the flap damping subprotocol of a gossip
// membership system: Flapper Set and Damped Set bookkeeping, the
// damp-request fan-out and quorum decision, and the controller that drives
// periodic initiation and expiration.
//
// A Controller owns a FlapperSet and a DampedSet. AddFlapper/RemoveFlapper
// feed the FlapperSet, which arms/disarms the damp timer as it transitions
// to/from empty. Each damp timer tick calls InitiateSubprotocol, which
// checks the cluster-wide damped cap, selects observers from Membership,
// and runs Fanout to collect enough Responses to decide via DecideDamped.
// A positive decision commits the member to the DampedSet, which arms the
// expiration timer to release it again after its suppress duration.
// Handler answers the receiving side of the same RPC for members acting as
// an observer. Events are published through the embedded publisher for any
// Subscriber, including the bundled TracingSubscriber (OpenTelemetry). The
// bundled Collector (Prometheus) is not a Subscriber: it reads the two
// sets' sizes directly on each scrape.
package damping
