package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterWriteTools adds the tools that write to a drive.
func RegisterWriteTools(s *server.MCPServer, deps Deps) {
	s.AddTool(runBackupTool(), runBackupHandler(deps))
}

// --- run_backup ---

func runBackupTool() mcp.Tool {
	return mcp.NewTool("run_backup",
		backupOptions("Back up a directory or file onto the volume with the given serial number. Unchanged files are skipped; changed files are written as new versions (name_v1.ext, ...). Existing files are never overwritten. Runs without confirmation.")...,
	)
}

func runBackupHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := runBackup(ctx, deps, req, false)
		if err != nil {
			if result != nil && result.Report != nil {
				return mcp.NewToolResultErrorf("%v (after %d files)", err, result.Report.Stats.FilesScanned), nil
			}
			return toolError(err)
		}
		return jsonResult(backupPayload(result))
	}
}
