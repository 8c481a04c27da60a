package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trellis-dev/trellis-mcp/internal/clean"
	"github.com/trellis-dev/trellis-mcp/internal/trello"
)

func (s *Server) handleGetCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	cardRes, err := s.resolver.ResolveCard(ctx, boardID, getStringArg(args, "card"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.Card(ctx, cardRes.ID)
	if err != nil {
		return errResult(fmt.Sprintf("get card: %v", err)), nil
	}
	return jsonResult(clean.CleanCard(raw, nil, nil)), nil
}

func (s *Server) handleCreateCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	name := getStringArg(args, "name")
	if name == "" {
		return errResult("name is required"), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	listRes, err := s.resolver.ResolveList(ctx, boardID, getStringArg(args, "list"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.CreateCard(ctx, listRes.ID, name, getStringArg(args, "description"), getStringArg(args, "due"))
	if err != nil {
		return errResult(fmt.Sprintf("create card: %v", err)), nil
	}
	return jsonResult(clean.CleanCard(raw, nil, nil)), nil
}

func (s *Server) handleUpdateCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	cardRes, err := s.resolver.ResolveCard(ctx, boardID, getStringArg(args, "card"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	var upd trello.CardUpdate
	if hasArg(args, "name") {
		v := getStringArg(args, "name")
		upd.Name = &v
	}
	if hasArg(args, "description") {
		v := getStringArg(args, "description")
		upd.Desc = &v
	}
	if hasArg(args, "due") {
		v := getStringArg(args, "due")
		upd.Due = &v
	}
	if upd.Name == nil && upd.Desc == nil && upd.Due == nil {
		return errResult("nothing to update: provide name, description, or due"), nil
	}

	raw, err := s.client.UpdateCard(ctx, cardRes.ID, upd)
	if err != nil {
		return errResult(fmt.Sprintf("update card: %v", err)), nil
	}
	// A rename invalidates cached name→id mappings under this board.
	if upd.Name != nil {
		s.resolver.InvalidateBoard(boardID)
	}
	return jsonResult(clean.CleanCard(raw, nil, nil)), nil
}

func (s *Server) handleMoveCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	cardRes, err := s.resolver.ResolveCard(ctx, boardID, getStringArg(args, "card"))
	if err != nil {
		return errResult(err.Error()), nil
	}
	listRes, err := s.resolver.ResolveList(ctx, boardID, getStringArg(args, "to_list"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.MoveCard(ctx, cardRes.ID, listRes.ID)
	if err != nil {
		return errResult(fmt.Sprintf("move card: %v", err)), nil
	}
	s.resolver.InvalidateBoard(boardID)
	return jsonResult(clean.CleanCard(raw, nil, nil)), nil
}

func (s *Server) handleArchiveCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	cardRes, err := s.resolver.ResolveCard(ctx, boardID, getStringArg(args, "card"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.ArchiveCard(ctx, cardRes.ID)
	if err != nil {
		return errResult(fmt.Sprintf("archive card: %v", err)), nil
	}
	s.resolver.InvalidateBoard(boardID)
	return jsonResult(clean.CleanCard(raw, nil, nil)), nil
}

func (s *Server) handleAddComment(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	text := getStringArg(args, "text")
	if text == "" {
		return errResult("text is required"), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	cardRes, err := s.resolver.ResolveCard(ctx, boardID, getStringArg(args, "card"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	action, err := s.client.AddComment(ctx, cardRes.ID, text)
	if err != nil {
		return errResult(fmt.Sprintf("add comment: %v", err)), nil
	}

	id, _ := action["id"].(string)
	date, _ := action["date"].(string)
	return jsonResult(map[string]any{
		"commented": true,
		"action_id": id,
		"date":      date,
	}), nil
}

func (s *Server) handleSearchCards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	query := getStringArg(args, "query")
	if query == "" {
		return errResult("query is required"), nil
	}

	// Board is optional here: an unscoped search spans all visible boards.
	boardID := ""
	if getStringArg(args, "board") != "" || s.resolver.Guard().DefaultBoard() != "" {
		boardID, err = s.resolveBoardID(ctx, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
	}

	raw, err := s.client.Search(ctx, query, boardID)
	if err != nil {
		return errResult(fmt.Sprintf("search: %v", err)), nil
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

func (s *Server) handleListArchivedCards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	boardID, err := s.resolveBoardID(ctx, args)
	if err != nil {
		return errResult(err.Error()), nil
	}

	raw, err := s.client.ArchivedCards(ctx, boardID)
	if err != nil {
		return errResult(fmt.Sprintf("list archived cards: %v", err)), nil
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
