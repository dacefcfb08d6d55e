// Package order holds the dispatch-side projection of an order owned by the order subsystem.
//
// Dispatch does not create or price orders. It receives "order paid" events, keeps the
// pickup/drop-off points and total it needs, and advances the delivery-related status
// values as the assignment moves through its lifecycle:
//
//	paid -> preparing -> dispatched -> in_transit -> delivered
//	                  \_______________________________ delivery_cancelled
package order
