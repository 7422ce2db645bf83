package order

import "slices"

// Edge is a directed (from, to) pair in the order state machine.
type Edge struct {
	From Status
	To   Status
}

func (e Edge) String() string {
	return e.From.String() + "->" + e.To.String()
}

// IsFirstClaim reports whether taking the edge binds the previously empty
// runner slot. Such edges are never applied directly; they are resolved by a
// single conditional write so that concurrent claimers get exactly one winner.
func (e Edge) IsFirstClaim() bool {
	return e == Edge{From: SellerConfirmed, To: RunnerAccepted}
}

var forwardPath = []Status{Pending, SellerConfirmed, RunnerAccepted, Shopping, ReadyForPickup, InTransit, Delivered}

var edges = buildEdges()

var grants = map[Role]map[Edge]struct{}{
	Seller: {
		{From: Pending, To: SellerConfirmed}: {},
	},
	Runner: {
		{From: SellerConfirmed, To: RunnerAccepted}: {},
		{From: RunnerAccepted, To: Shopping}:        {},
		{From: Shopping, To: ReadyForPickup}:        {},
	},
	Courier: {
		{From: ReadyForPickup, To: InTransit}: {},
		{From: InTransit, To: Delivered}:      {},
	},
	Buyer: {
		{From: Pending, To: Cancelled}:         {},
		{From: SellerConfirmed, To: Cancelled}: {},
	},
}

func buildEdges() map[Edge]struct{} {
	set := make(map[Edge]struct{})
	for i := 0; i+1 < len(forwardPath); i++ {
		set[Edge{From: forwardPath[i], To: forwardPath[i+1]}] = struct{}{}
	}
	for _, s := range Statuses() {
		if !s.IsTerminal() {
			set[Edge{From: s, To: Cancelled}] = struct{}{}
		}
	}
	return set
}

// LookupEdge returns the edge from -> to and whether it exists in the table.
func LookupEdge(from, to Status) (Edge, bool) {
	e := Edge{From: from, To: to}
	_, ok := edges[e]
	return e, ok
}

// IsGranted reports whether role may take edge. It does not check the edge exists.
func IsGranted(role Role, edge Edge) bool {
	_, ok := grants[role][edge]
	return ok
}

// NextStatuses lists the statuses reachable from from in one step, in
// topological order.
func NextStatuses(from Status) []Status {
	next := make([]Status, 0, 2)
	for e := range edges {
		if e.From == from {
			next = append(next, e.To)
		}
	}
	slices.Sort(next)
	return next
}

// GrantedEdges lists the edges role may take, sorted by source status.
func GrantedEdges(role Role) []Edge {
	granted := make([]Edge, 0, len(grants[role]))
	for e := range grants[role] {
		granted = append(granted, e)
	}
	slices.SortFunc(granted, func(a, b Edge) int {
		if a.From != b.From {
			return int(a.From) - int(b.From)
		}
		return int(a.To) - int(b.To)
	})
	return granted
}
