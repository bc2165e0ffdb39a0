package toolserver

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
)

// endpointPath is the single HTTP path the runtime's --mcp-server flag
// points at, grounded on the corpus's Streamable HTTP transport choice
// (mark3labs/mcp-go's server.StreamableHTTPServer).
const endpointPath = "/mcp"

// Host wraps an MCP server with an HTTP listener lifecycle: one Host per
// project, started when the project opens and stopped on Close.
type Host struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer

	mu       sync.Mutex
	listener net.Listener
	endpoint string
}

// NewHost builds a Host around the MCP server New(sp) produces.
func NewHost(sp Spawner) *Host {
	mcpServer := New(sp)
	return &Host{
		mcpServer:  mcpServer,
		httpServer: server.NewStreamableHTTPServer(mcpServer, server.WithEndpointPath(endpointPath)),
	}
}

// Serve starts listening on 127.0.0.1:0 (an OS-assigned port) and returns
// the endpoint URL the runtime subprocess should be given. The listener
// runs until Close.
func (h *Host) Serve() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return h.endpoint, nil
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("toolserver: listen: %w", err)
	}

	h.listener = listener
	h.endpoint = fmt.Sprintf("http://%s%s", listener.Addr().String(), endpointPath)

	go func() {
		_ = http.Serve(listener, h.httpServer)
	}()

	return h.endpoint, nil
}

// Close stops the listener. Safe to call more than once.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return nil
	}
	err := h.listener.Close()
	h.listener = nil
	return err
}

// Endpoint returns the URL Serve most recently bound, or "" before the
// first Serve call.
func (h *Host) Endpoint() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.endpoint
}
