package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trellis-dev/trellis-mcp/internal/clean"
)

func (s *Server) handleGetLists(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	lists, err := s.client.BoardLists(ctx, boardID)
	if err != nil {
		return errResult(fmt.Sprintf("get lists: %v", err)), nil
	}

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	results := make([]entry, 0, len(lists))
	for _, l := range lists {
		results = append(results, entry{ID: l.ID, Name: l.Name})
	}
	return jsonResult(map[string]any{
		"count": len(results),
		"lists": results,
	}), nil
}

func (s *Server) handleGetCards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	listRes, err := s.resolver.ResolveList(ctx, boardID, getStringArg(args, "list"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.ListCards(ctx, listRes.ID)
	if err != nil {
		return errResult(fmt.Sprintf("get cards: %v", err)), nil
	}

	cards := make([]clean.Card, 0, len(raw))
	for _, rc := range raw {
		cards = append(cards, clean.CleanCard(rc, nil, nil))
	}
	return jsonResult(map[string]any{
		"count": len(cards),
		"cards": cards,
	}), nil
}
