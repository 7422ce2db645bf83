// Package errs provides the generic error types shared by the kayayo service.
//
// Every type follows the same shape:
//   - a sentinel error variable (e.g., ErrValueIsRequired) usable with errors.Is
//   - a struct type carrying the offending parameter and an optional cause
//   - constructors with and without a cause
//   - Unwrap returning the sentinel
//
// Domain packages define their own sentinels (order.ErrInvalidTransition,
// handover.ErrChallengeExpired, ...) and use these types for plain value
// validation.
package errs
