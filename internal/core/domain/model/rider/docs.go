// Package rider models the courier side of dispatch: a device-bound session that
// reports its position on a heartbeat and is either free for work or busy.
//
// The package includes:
//   - Identity: a best-effort device fingerprint computed once at the edge of the system
//   - Rider: the aggregate holding profile, last known position, heartbeat and availability
//
// Key business rules:
//   - Name and phone are mandatory; position is optional but required before work is offered
//   - A rider is eligible for work only while available, positioned and seen within the presence window
//   - Position reports older than the last accepted heartbeat are ignored (last write wins)
//   - Availability is flipped to false by a claim and back to true by a release
//
// Identity is not a credential. Two devices presenting the same signals share a session;
// nothing here prevents a client from spoofing another device's signals.
package rider
