// Package mcp implements MCP (Model Context Protocol) client support,
// allowing the agent to connect to external MCP servers and expose
// their tools to the agent loop.
//
// MCP uses JSON-RPC 2.0 over two transports: stdio (subprocess) and
// streamable HTTP. The client discovers tools via tools/list and invokes
// them via tools/call. Discovered tools are bridged into the tool
// registry so they appear as native tools to the LLM.
//
// This package covers the client/host side; the server side lives in
// the mcpserver package.
package mcp
