package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trellis-dev/trellis-mcp/internal/clean"
)

func (s *Server) handleListBoards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.client.MemberBoards(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("list boards: %v", err)), nil
	}

	type entry struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Closed bool   `json:"closed"`
		URL    string `json:"url,omitempty"`
	}
	results := make([]entry, 0, len(boards))
	for _, b := range boards {
		results = append(results, entry{ID: b.ID, Name: b.Name, Closed: b.Closed, URL: b.URL})
	}
	return jsonResult(map[string]any{
		"count":  len(results),
		"boards": results,
	}), nil
}

func (s *Server) handleGetBoard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.Board(ctx, boardID)
	if err != nil {
		return errResult(fmt.Sprintf("get board: %v", err)), nil
	}
	return jsonResult(clean.CleanBoard(raw)), nil
}
