// Package api implements the HTTP delivery layer: request decoding and
// validation, authentication, mapping service and queue errors onto HTTP
// status codes, and response shaping.
//
// Handlers stay thin. They translate between the wire format and the
// service layer, never reaching around it into stores or the registry.
// Error responses are sanitized: internal error strings are logged
// (redacted) but never returned to clients, and task lookups collapse
// "someone else's task" and "no such task" into the same 404 so task
// existence does not leak across owners.
package api
