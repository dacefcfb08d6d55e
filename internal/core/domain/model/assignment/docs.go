// Package assignment provides the DeliveryAssignment aggregate: the durable record that
// binds one order to one delivery attempt and drives it through its lifecycle.
//
// State machine (terminal states are delivered and cancelled):
//
//	queued ──> offered ──> accepted ──> picked_up ──> en_route ──> delivered
//	  │  ^        │           │             │             │
//	  │  └────────┤ (timeout) │             │             │
//	  └───────────┴───────────┴─────────────┴─────────────┴──> cancelled
//
// queued -> offered and the timeout paths (offered -> offered on reassignment,
// offered -> queued on requeue) belong to dispatch and the sweeper; riders drive the rest.
//
// Every mutation records an Event. Events are drained by the application layer after
// persisting the aggregate and become the audit trail and change feed.
package assignment
