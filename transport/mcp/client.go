package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pawnhall/gameclient/checkout"
	"github.com/pawnhall/gameclient/config"
	"github.com/pawnhall/gameclient/notify"
	"github.com/pawnhall/gameclient/protocol"
)

// Client is a thin MCP server that proxies to the HTTP gateway
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the HTTP gateway
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pawnhall Game Client",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pawnhall Game Client - MCP Interface

This is a thin proxy to the client's local HTTP gateway.

AVAILABLE TOOLS:
- session_info: Current session state, self identity and peer list
- list_servers: Configured game servers and the last scan result
- scan_servers: Start a status scan over every configured server
- send_chat: Send one chat message to every registered peer
- list_notifications: Active error notifications`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_info",
		Description: "Get the current session state, self identity and peer list",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSessionInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_servers",
		Description: "List configured game servers and the last scan result",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListServers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "scan_servers",
		Description: "Start a status scan over every configured server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleScanServers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "send_chat",
		Description: "Send one chat message to every registered peer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Message text",
				},
			},
			Required: []string{"text"},
		},
	}, c.handleSendChat)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_notifications",
		Description: "List active error notifications",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListNotifications)
}

// GetMCPServer returns the underlying MCP server for stdio serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleSessionInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info struct {
		State string         `json:"state"`
		Self  *protocol.Peer `json:"self"`
	}
	if err := c.apiCall("GET", "/api/session", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var peers struct {
		Peers []protocol.Peer `json:"peers"`
	}
	if err := c.apiCall("GET", "/api/session/peers", nil, &peers); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "State: %s\n", info.State)
	if info.Self != nil {
		fmt.Fprintf(&b, "Self: %s\n", *info.Self)
	}
	fmt.Fprintf(&b, "Peers: %d\n", len(peers.Peers))
	for _, p := range peers.Peers {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Servers  []config.Server         `json:"servers"`
		Scanning bool                    `json:"scanning"`
		Statuses []checkout.ServerStatus `json:"statuses"`
	}
	if err := c.apiCall("GET", "/api/servers", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Servers: %d (scanning: %v)\n", len(response.Servers), response.Scanning)
	for _, srv := range response.Servers {
		fmt.Fprintf(&b, "  %s (%s) port %d\n", srv.Name, config.KindName(srv.Kind), srv.Port)
	}
	for _, st := range response.Statuses {
		if st.Availability != nil {
			fmt.Fprintf(&b, "  %s: %d/%d\n", st.Name, st.Availability.Current, st.Availability.Capacity)
		} else {
			fmt.Fprintf(&b, "  %s: unreachable\n", st.Name)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleScanServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response map[string]string
	if err := c.apiCall("POST", "/api/servers/scan", map[string]string{}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Scan started. Use list_servers to read the result once published.\n"), nil
}

func (c *Client) handleSendChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if err := c.apiCall("POST", "/api/chat", map[string]string{"text": text}, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Message sent.\n"), nil
}

func (c *Client) handleListNotifications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	if err := c.apiCall("GET", "/api/notifications", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active notifications: %d\n", len(response.Notifications))
	for _, n := range response.Notifications {
		fmt.Fprintf(&b, "  [%d] %s\n", n.ID, n.Text)
	}
	return mcp.NewToolResultText(b.String()), nil
}
