// Package storage provides a minimal persistence layer for chore activation
// history.
//
// It currently supports:
//   - Append-only activation records (one row per dispatched activation)
//   - Bounded retrieval of recent activations per chore
package storage
