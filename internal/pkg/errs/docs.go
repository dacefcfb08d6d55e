// Package errs holds the typed errors shared by the dispatch domain and its adapters.
//
// Every type wraps one sentinel, so handlers map errors with errors.Is and never parse
// messages:
//   - ErrValueIsRequired, ErrValueIsInvalid, ErrValueIsOutOfRange: rejected input, HTTP 400
//   - ErrObjectNotFound: unknown rider, order or assignment, HTTP 404
//   - ErrVersionIsInvalid: a compare-and-swap write lost to a concurrent one, HTTP 409
//
// Constructors come in pairs, with and without a cause. The cause is printed but not
// unwrapped, so storage details never leak into errors.Is checks.
package errs
