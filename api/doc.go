// Package api provides the local HTTP gateway a display layer reads the
// client's state through.
//
// The api package implements:
//   - Session state and peer-list observation endpoints
//   - Chat message sending
//   - Servers-list scan triggering and result retrieval
//   - Notification listing and dismissal
//
// Endpoints:
//
// Session:
//   - GET /api/session - Current state and, once registered, the self identity
//   - GET /api/session/peers - Fresh peer-list snapshot (raises the
//     on-demand update signal)
//
// Chat:
//   - POST /api/chat - Send one chat message; 409 unless registered
//
// Servers:
//   - GET /api/servers - Configured servers, scan-in-progress flag and the
//     last published scan result
//   - POST /api/servers/scan - Start a scan; 409 while one is in progress
//
// Notifications:
//   - GET /api/notifications - Active notifications
//   - DELETE /api/notifications/{id} - Dismiss one notification
//
// Request/Response Format:
//
// All endpoints return JSON. Errors are returned as JSON with appropriate
// HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Usage:
//
//	server := api.NewServer(machine, chat, workflow, reporter, cfg)
//	log.Fatal(http.ListenAndServe("localhost:8080", server))
package api
