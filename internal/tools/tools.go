// Package tools exposes the board middleware to an agent over MCP.
// Every handler follows the same shape: resolve human names to ids,
// perform the API call, clean the payload, return it as JSON.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trellis-dev/trellis-mcp/internal/resolve"
	"github.com/trellis-dev/trellis-mcp/internal/trello"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp      *mcp.Server
	client   *trello.Client
	resolver *resolve.Resolver
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(client *trello.Client, resolver *resolve.Resolver) *Server {
	srv := &Server{
		client:   client,
		resolver: resolver,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "trellis-mcp",
				Version: "0.1.0",
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// boardProperty is the shared schema fragment for the optional board argument.
const boardProperty = `"board": {
	"type": "string",
	"description": "Board name (not id). Optional if a default board is configured."
}`

func (s *Server) registerTools() {
	// 1. list_boards
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_boards",
		Description: "List all boards visible to the authenticated member, with name, id, closed state, and URL. Use to discover exact board names before other calls.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, s.handleListBoards)

	// 2. get_board
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_board",
		Description: "Fetch a board with its full list→card hierarchy in one call. Member and label ids are resolved to names, checklist progress is summarized, and presentation-only fields are stripped.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {` + boardProperty + `}
		}`),
	}, s.handleGetBoard)

	// 3. get_lists
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_lists",
		Description: "List the open lists on a board with their names and ids.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {` + boardProperty + `}
		}`),
	}, s.handleGetLists)

	// 4. get_cards
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_cards",
		Description: "List the open cards in one list, cleaned: description, due date, labels, checklist progress.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"list": {
					"type": "string",
					"description": "List name (fuzzy matched against the board's lists)"
				}
			},
			"required": ["list"]
		}`),
	}, s.handleGetCards)

	// 5. get_card
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_card",
		Description: "Fetch one card by name with members, labels, and checklist progress.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"card": {
					"type": "string",
					"description": "Card name (searched, then fuzzy matched)"
				}
			},
			"required": ["card"]
		}`),
	}, s.handleGetCard)

	// 6. create_card
	s.mcp.AddTool(&mcp.Tool{
		Name:        "create_card",
		Description: "Create a card at the bottom of a list.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"list": {
					"type": "string",
					"description": "Target list name"
				},
				"name": {
					"type": "string",
					"description": "Card title"
				},
				"description": {
					"type": "string",
					"description": "Card description (markdown)"
				},
				"due": {
					"type": "string",
					"description": "Due date, ISO 8601 (e.g. 2026-09-15 or 2026-09-15T17:00:00Z)"
				}
			},
			"required": ["list", "name"]
		}`),
	}, s.handleCreateCard)

	// 7. update_card
	s.mcp.AddTool(&mcp.Tool{
		Name:        "update_card",
		Description: "Update a card's title, description, or due date. Only the provided fields change.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"card": {
					"type": "string",
					"description": "Card name to update"
				},
				"name": {
					"type": "string",
					"description": "New title"
				},
				"description": {
					"type": "string",
					"description": "New description"
				},
				"due": {
					"type": "string",
					"description": "New due date, ISO 8601. Empty string clears it."
				}
			},
			"required": ["card"]
		}`),
	}, s.handleUpdateCard)

	// 8. move_card
	s.mcp.AddTool(&mcp.Tool{
		Name:        "move_card",
		Description: "Move a card to another list on the same board.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"card": {
					"type": "string",
					"description": "Card name to move"
				},
				"to_list": {
					"type": "string",
					"description": "Destination list name"
				}
			},
			"required": ["card", "to_list"]
		}`),
	}, s.handleMoveCard)

	// 9. archive_card
	s.mcp.AddTool(&mcp.Tool{
		Name:        "archive_card",
		Description: "Archive (close) a card.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"card": {
					"type": "string",
					"description": "Card name to archive"
				}
			},
			"required": ["card"]
		}`),
	}, s.handleArchiveCard)

	// 10. add_comment
	s.mcp.AddTool(&mcp.Tool{
		Name:        "add_comment",
		Description: "Add a comment to a card.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"card": {
					"type": "string",
					"description": "Card name to comment on"
				},
				"text": {
					"type": "string",
					"description": "Comment text"
				}
			},
			"required": ["card", "text"]
		}`),
	}, s.handleAddComment)

	// 11. search_cards
	s.mcp.AddTool(&mcp.Tool{
		Name:        "search_cards",
		Description: "Search cards with Trello query operators (e.g. 'name:\"launch\" is:archived due:week'). Optionally scoped to one board.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + boardProperty + `,
				"query": {
					"type": "string",
					"description": "Search query with operators"
				}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchCards)

	// 12. list_archived_cards
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_archived_cards",
		Description: "List the archived cards on a board.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {` + boardProperty + `}
		}`),
	}, s.handleListArchivedCards)
}

// resolveBoardID resolves the board argument, falling back to the
// configured default board when the call omits one.
func (s *Server) resolveBoardID(ctx context.Context, args map[string]any) (string, error) {
	name := getStringArg(args, "board")
	if name == "" {
		name = s.resolver.Guard().DefaultBoard()
	}
	if name == "" {
		return "", fmt.Errorf("no board given and no default board configured")
	}
	res, err := s.resolver.ResolveBoard(ctx, name)
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params.Arguments == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// hasArg reports whether the argument was present at all, so handlers
// can tell "unset" apart from "explicitly empty" on partial updates.
func hasArg(args map[string]any, key string) bool {
	_, ok := args[key]
	return ok
}
