// Package protocol implements the text-line wire grammar spoken between the
// client and a game server.
//
// The protocol package implements:
//   - Tokenizing and encoding of space-delimited text lines
//   - Core session messages (LOGIN, REGISTRATION, LOGGED_IN, LOGGED_OUT,
//     INTERRUPT, SERVICE REQUEST/EVENT)
//   - One closed event type per sub-service (Chat, Lobby, Minigame, Status)
//   - A small schema scanner for numeric and enumerated arguments
//
// Wire format:
//
// Every message is a single text line of space-delimited tokens. The first
// token is a keyword that selects the message shape; remaining tokens are
// positional arguments. Sub-service traffic is wrapped in a SERVICE envelope:
//
//	SERVICE REQUEST <seq> <serviceName> <rest...>   (client to server)
//	SERVICE EVENT <serviceName> <rest...>           (server to client)
//
// Event types:
//
// Each sub-service exposes its inbound traffic as a closed interface with one
// struct variant per command keyword (ChatEvent, LobbyEvent, MinigameEvent and
// the Status Availability message). A type switch over the variants is
// exhaustive; there is no string dispatch outside this package.
//
// Errors:
//
// An unrecognized keyword yields ErrBadCommand, a token that does not match
// its field's expected type yields ErrMalformed. Both are wrapped in a
// *ParseError that names the keyword and field so the error stream can report
// exactly what was rejected.
package protocol
