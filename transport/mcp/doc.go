// Package mcp exposes the game client over the Model Context Protocol.
//
// The mcp package implements a thin MCP server that proxies every tool call
// to the local HTTP gateway (package api); it holds no state of its own.
//
// Tools:
//   - session_info: current session state, self identity and peers
//   - list_servers: configured servers and the last scan result
//   - scan_servers: start a servers-list status scan
//   - send_chat: send one chat message to every registered peer
//   - list_notifications: active error notifications
package mcp
