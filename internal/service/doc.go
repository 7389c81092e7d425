// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and
// depend only on domain entities and repository interfaces, never on
// specific infrastructure implementations. Expected error conditions are
// reported through sentinel errors so callers can branch with errors.Is;
// the API layer maps those sentinels to HTTP status codes.
package service
