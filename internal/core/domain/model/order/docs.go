// Package order holds the Order aggregate and everything that decides how an
// order may move through its lifecycle.
//
// The package includes:
//   - Order: the aggregate root owning status, runner/courier slots, item
//     flags, handover flags and pending domain events
//   - Item: a line item attributed to one seller, with sellerReady and
//     runnerCollected flags
//   - Status and Role: typed enums with wire names
//   - the transition table: the typed edge set and the (role, edge) grant set
//   - Fees and FeeSchedule: the monetary breakdown fixed at checkout
//   - Event: lifecycle notifications addressed to buyer, runner and courier
//
// Key business rules:
//   - status follows pending -> seller_confirmed -> runner_accepted -> shopping ->
//     ready_for_pickup -> in_transit -> delivered, with cancelled reachable from
//     every non-terminal status
//   - a role may take only the edges it is granted
//   - the runner and courier slots are bound once and never overwritten
//   - ready_for_pickup needs every item collected; in_transit needs the
//     courier handover verified
//
// Failures are typed: InvalidTransitionError (wrong state), UnauthorizedError
// (wrong role or identity) and AlreadyClaimedError (lost a claim), each
// matching its sentinel with errors.Is.
package order
