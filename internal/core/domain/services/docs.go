// Package services provides domain services whose rules span more than one
// aggregate or need the caller's identity next to the aggregate state.
//
// The package includes:
//   - OwnershipGuard: decides whether a specific actor, not just a role, may
//     take a transition, claim a slot, or take part in a handover
//
// Domain services hold no state and perform no I/O.
package services
