package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trellis-dev/trellis-mcp/internal/config"
	"github.com/trellis-dev/trellis-mcp/internal/resolve"
	"github.com/trellis-dev/trellis-mcp/internal/tools"
	"github.com/trellis-dev/trellis-mcp/internal/trello"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("trellis-mcp", version)
		os.Exit(0)
	}

	// stdout carries the MCP wire; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("getwd err=%v", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		log.Fatalf("config err=%v", err)
	}
	slog.Info("config.loaded",
		"allowed_boards", len(cfg.AllowedBoards),
		"default_board", cfg.DefaultBoard != "",
		"cache_ttl", cfg.CacheTTL,
	)

	client := trello.NewClient(cfg.APIKey, cfg.Token)
	cache := resolve.NewCache(cfg.CacheTTL)
	guard := resolve.NewScopeGuard(cfg.AllowedBoards, cfg.DefaultBoard)
	resolver := resolve.New(client, cache, guard, cfg.Thresholds)

	srv := tools.NewServer(client, resolver)

	if err := srv.MCPServer().Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server err=%v", err)
	}
}
