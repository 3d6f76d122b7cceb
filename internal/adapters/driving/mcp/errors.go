// Package mcp provides an MCP (Model Context Protocol) server adapter for recall.
// It is the chat engine's window onto recorded activity: grounding context is
// fetched with retrieve_context and new captures arrive through record_activity.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
