package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"state": "registered",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api/session", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["state"] != "registered" {
		t.Errorf("Expected state registered, got %v", response["state"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api/session", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "scan already in progress"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("POST", "/api/servers/scan", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 409 response")
	}
	if !strings.Contains(err.Error(), "scan already in progress") {
		t.Errorf("Expected the gateway's error message, got: %v", err)
	}
}

func TestClient_sessionInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/session":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"state": "registered",
				"self":  map[string]interface{}{"uid": 7, "name": "alice"},
			})
		case "/api/session/peers":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"peers": []map[string]interface{}{
					{"uid": 7, "name": "alice"},
					{"uid": 12, "name": "bob"},
				},
			})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSessionInfo(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleSessionInfo failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	for _, want := range []string{"State: registered", "alice", "Peers: 2"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text.Text)
		}
	}
}

func TestClient_listServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/servers" {
			t.Errorf("Expected GET /api/servers, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"servers": []map[string]interface{}{
				{"name": "pawns-1", "kind": "P", "port": 35555},
			},
			"scanning": false,
			"statuses": []map[string]interface{}{
				{"name": "pawns-1", "kind": "P", "availability": map[string]int{"current": 1, "capacity": 2}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListServers(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleListServers failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	for _, want := range []string{"pawns-1 (Pawns) port 35555", "pawns-1: 1/2"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text.Text)
		}
	}
}

func TestClient_scanServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/servers/scan" {
			t.Errorf("Expected POST /api/servers/scan, got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "scan started"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleScanServers(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleScanServers failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	if !strings.Contains(text.Text, "Scan started") {
		t.Errorf("Expected scan confirmation, got: %s", text.Text)
	}
}

func TestClient_sendChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/chat" {
			t.Errorf("Expected POST /api/chat, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["text"] != "hello" {
			t.Errorf("Unexpected request body: %v (%v)", body, err)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "send_chat",
			Arguments: map[string]interface{}{"text": "hello"},
		},
	}
	result, err := client.handleSendChat(context.Background(), request)
	if err != nil {
		t.Fatalf("handleSendChat failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	if !strings.Contains(text.Text, "Message sent") {
		t.Errorf("Expected confirmation, got: %s", text.Text)
	}

	if result, _ := client.handleSendChat(context.Background(), mcp.CallToolRequest{}); !result.IsError {
		t.Error("Expected error result for a missing text argument")
	}
}

func TestClient_listNotifications(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"notifications": []map[string]interface{}{
				{"id": 0, "text": "transport closed: connection reset"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListNotifications(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleListNotifications failed: %v", err)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	for _, want := range []string{"Active notifications: 1", "[0] transport closed"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text.Text)
		}
	}
}
