// Package order holds the Order aggregate of a supply-chain purchase contract
// and the Status state machine that governs its lifecycle.
//
// The happy path is created -> approved -> in_transit -> delivered -> paid.
// Any non-terminal order can be cancelled by an explicit administrative action.
// Transitions that are not allowed from the current status fail with
// errs.ErrTransitionIsInvalid, and repeated transitions towards a status the
// order already reached fail with errs.ErrAlreadyInTargetStatus. A failed
// transition never changes the order.
package order
