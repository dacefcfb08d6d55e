// Package kernel provides the value objects shared by every aggregate in the dispatch domain.
//
// The package includes:
//   - UUID: identifiers for riders, assignments and orders, including deterministic
//     name-based identifiers used for device sessions
//   - Location: a validated latitude/longitude pair with haversine distance
//
// Both types are immutable, reject their zero value on Validate and are safe for concurrent use.
package kernel
