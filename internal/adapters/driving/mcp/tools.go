package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// DefaultK is the number of items returned when the caller does not ask for a count.
const DefaultK = 5

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the user's question or topic to ground"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of items to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	Items []RetrievedItemOutput `json:"items"`
	Count int                   `json:"count"`
}

// RetrievedItemOutput is one piece of grounding context.
type RetrievedItemOutput struct {
	Kind  string  `json:"kind"`
	ID    int64   `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// RecordActivityInput is the input schema for the record_activity tool.
type RecordActivityInput struct {
	UserID         string `json:"user_id" jsonschema:"owner of the capture"`
	Text           string `json:"text" jsonschema:"captured on-screen text"`
	WindowTitle    string `json:"window_title,omitempty" jsonschema:"title of the focused window"`
	IntervalLength int    `json:"interval_length,omitempty" jsonschema:"capture interval in seconds"`
}

// RecordActivityOutput is the output schema for the record_activity tool.
type RecordActivityOutput struct {
	ID      int64  `json:"id"`
	Outcome string `json:"outcome"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Find recorded activities and documents most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Activity != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "record_activity",
			Description: "Store a captured activity and index it when eligible",
		}, s.handleRecordActivity)
	}
}

// handleRetrieve handles the retrieve_context tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = DefaultK
	}

	items, err := s.ports.Retrieval.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Items: make([]RetrievedItemOutput, len(items)),
		Count: len(items),
	}
	for i := range items {
		output.Items[i] = RetrievedItemOutput{
			Kind:  items[i].Kind.String(),
			ID:    items[i].ID,
			Text:  items[i].Text,
			Score: items[i].Score,
		}
	}

	return nil, output, nil
}

// handleRecordActivity handles the record_activity tool invocation.
func (s *Server) handleRecordActivity(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordActivityInput,
) (*mcp.CallToolResult, RecordActivityOutput, error) {
	if s.ports.Activity == nil {
		return nil, RecordActivityOutput{}, errors.New("activity service not configured")
	}

	record, result, err := s.ports.Activity.Capture(ctx, domain.CaptureRequest{
		UserID:         input.UserID,
		Text:           input.Text,
		WindowTitle:    input.WindowTitle,
		IntervalLength: input.IntervalLength,
	})
	if err != nil {
		return nil, RecordActivityOutput{}, err
	}

	return nil, RecordActivityOutput{
		ID:      record.ID,
		Outcome: result.Outcome.String(),
	}, nil
}
