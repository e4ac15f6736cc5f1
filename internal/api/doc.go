// Package api implements the read-only HTTP status API of the vacuum logger.
//
// This package provides:
//   - GET /api/v1/health: liveness plus the health of each output
//   - GET /api/v1/status: the poller's status snapshot
//   - GET /api/v1/readings?limit=N: the newest stored rows, oldest first
//   - GET /api/v1/metrics: Go runtime statistics and uptime
//   - Middleware stack (request ID, logging, recovery)
//
// The server never touches the serial link. It reads the poller's
// mutex-guarded snapshot and opens the series file read-only per request,
// so a slow client cannot stall acquisition.
package api
