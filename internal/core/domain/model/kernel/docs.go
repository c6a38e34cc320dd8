// Package kernel provides the value objects shared by the order domain:
//   - UUID: identifiers for orders (random) and events (time ordered)
//   - Location: validated latitude/longitude pairs with linear interpolation
//   - Commitment: 32 byte hash commitments over a secret value and a nonce
//
// All values are immutable and have invalid zero values that are rejected by
// their Validate methods.
package kernel
