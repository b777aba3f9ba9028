// Package http provides HTTP handlers and middleware for the batch scheduler
// API.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness probe, unauthenticated.
//   - GET /metrics (configurable): Prometheus exposition, unauthenticated.
//   - POST /schedule/preview: expands {"start_date","end_date","pattern",
//     "session_count","manual_dates"} into {"dates"} without storing anything.
//   - POST /schedule/manual-selection: toggles {"date"} in {"selected"} capped
//     at {"session_count"}; a full selection yields 422 SESSION_LIMIT_EXCEEDED.
//   - GET /batches, POST /batches, GET|PUT|DELETE /batches/{batchID}: batch
//     management exchanging the batchDTO payload defined in dto.go. Create and
//     update responses include the generated sessions.
//   - GET /batches/{batchID}/sessions: sessions in date order, each carrying
//     its 1-based number.
//   - POST /batches/{batchID}/sessions/{sessionID}/conflicts: reports the
//     session a proposed slot would collide with, or null.
//   - POST /batches/{batchID}/sessions/{sessionID}/reschedule: moves a
//     session; an overlap yields 409 SESSION_CONFLICT with the colliding
//     session.
//   - POST /batches/{batchID}/sessions/{sessionID}/status: marks a session
//     completed or cancelled.
//   - GET /batches/{batchID}/export.ics, GET /batches/{batchID}/export.xlsx:
//     schedule downloads.
//
// Everything except the health and metrics endpoints requires
// "Authorization: Bearer <api key>". Dates are YYYY-MM-DD and times HH:MM.
package http
