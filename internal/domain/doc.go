// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, synthesis tasks and their
// generation parameters. Task lifecycle transitions are enforced here so
// that no caller can move a task along an edge the state machine does not
// define.
package domain
