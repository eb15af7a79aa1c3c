package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"drivebak/internal/adapters/drives"
	"drivebak/internal/adapters/filesystem"
	"drivebak/internal/adapters/hashing"
	mcpadapter "drivebak/internal/adapters/mcp"
	"drivebak/internal/adapters/sqlite"
	"drivebak/internal/config"
	"drivebak/internal/ports"
)

func main() {
	envFile := flag.String("env-file", config.DefaultEnvFile, "dotenv file to load")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	// stdout carries the protocol, so logs go to stderr only
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	})))

	cfg, err := config.Load(config.LoadOptions{EnvFile: *envFile, SkipSerial: true})
	if err != nil {
		log.Fatalf("drivebak-mcp: %v", err)
	}

	deps := mcpadapter.Deps{
		Resolver: drives.NewResolver(),
		Store:    filesystem.NewStore(),
		NewHasher: func(algorithm string) (ports.Hasher, error) {
			return hashing.New(algorithm)
		},
		DefaultAlgorithm: cfg.Algorithm,
	}

	if cfg.JournalEnabled() {
		path := cfg.JournalPath
		if path == "" {
			path = sqlite.DefaultPath()
		}
		journal, err := sqlite.Open(filesystem.ExpandHome(path))
		if err != nil {
			slog.Warn("run journal unavailable", "path", path, "error", err)
		} else {
			defer journal.Close()
			deps.Journal = journal
		}
	}

	mcpServer := server.NewMCPServer(
		"drivebak-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	slog.Info("serving on stdio", "algorithm", cfg.Algorithm, "journal", deps.Journal != nil)
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("drivebak-mcp: %v", err)
	}
}
