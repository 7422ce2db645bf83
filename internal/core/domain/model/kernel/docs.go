// Package kernel provides the value objects shared by the order and handover
// aggregates:
//   - UUID: identifiers for orders, items, actors and challenges
//   - Money: non-negative decimal amounts for prices and fees
//   - Address: the immutable delivery destination
//
// All values are immutable and reject their zero value through Validate.
package kernel
