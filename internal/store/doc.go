// Package store provides abstractions for data persistence: the interfaces
// the rest of the application depends on, shared error types, and helpers
// for running work inside database transactions.
package store
