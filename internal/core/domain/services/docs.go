// Package services provides the domain services of the dispatch engine: logic that spans
// riders, orders and assignments but belongs to none of them.
//
// The package includes:
//   - RiderRanker: filters riders to those eligible for work and orders them by distance
//   - RouteEstimator: quotes the distance and duration attached to an offer
//
// Both are stateless values and safe for concurrent use.
package services
