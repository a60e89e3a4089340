// Package stdio runs the MCP server over standard input/output for
// subprocess hosting. One process serves one client, so the rate-limit
// session is a fixed constant.
package stdio

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/resumatch/resumatch-mcp/internal/engine"
	"github.com/resumatch/resumatch-mcp/internal/matchserver"
)

// SessionID buckets every stdio call under one rate-limit counter.
const SessionID = "stdio"

// Run serves MCP over stdio until the context is cancelled or the client
// closes the stream.
func Run(ctx context.Context, eng *engine.Engine, version, secret string) error {
	server := matchserver.New(eng, matchserver.Options{
		Version:   version,
		SessionID: SessionID,
		Secret:    engine.StaticSecret(secret),
	})
	slog.Info("serving MCP over stdio", slog.String("version", version))
	return server.Run(ctx, &mcp.StdioTransport{})
}
