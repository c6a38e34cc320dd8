// Package services holds the domain services of the order lifecycle that do
// not belong to a single aggregate.
//
// The package includes:
//   - CommitmentVerifier: computes and checks Keccak-256 hash commitments
//   - TransitionValidator: checks the guards of a requested transition, applies
//     it to an order and produces the event that records it
//
// Both are stateless values and safe for concurrent use.
package services
