// Package postgres provides PostgreSQL-backed implementations of the
// persistence interfaces: the user store and the task snapshot store the
// queue rehydrates from on boot.
//
// All implementations use the store.DBTX abstraction so they work with
// either a database connection or a transaction, and translate driver
// errors into the sentinel errors defined in the store package.
package postgres
