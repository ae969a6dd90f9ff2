// Package mcp exposes recipient edit screens as Model Context Protocol tools,
// so an agent can open a screen, edit fields and submit, over stdio or SSE.
package mcp
