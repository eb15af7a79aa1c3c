package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"drivebak/internal/application"
	"drivebak/internal/application/commands"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// Deps are the collaborators the tools run against
type Deps struct {
	Resolver ports.DriveResolver
	Store    ports.FileStore

	// NewHasher builds a hasher for a named algorithm; "" selects DefaultAlgorithm
	NewHasher        func(algorithm string) (ports.Hasher, error)
	DefaultAlgorithm string

	// Journal may be nil, which disables history and run recording
	Journal ports.Journal
}

// RegisterReadTools adds all tools that never write to a drive.
func RegisterReadTools(s *server.MCPServer, deps Deps) {
	s.AddTool(listDrivesTool(), listDrivesHandler(deps))
	s.AddTool(hashFileTool(), hashFileHandler(deps))
	s.AddTool(compareFilesTool(), compareFilesHandler(deps))
	s.AddTool(planBackupTool(), planBackupHandler(deps))
	s.AddTool(historyTool(), historyHandler(deps))
}

// --- list_drives ---

func listDrivesTool() mcp.Tool {
	return mcp.NewTool("list_drives",
		mcp.WithDescription("List mounted volumes with their root, label and serial number. Use the serial to pick a backup destination."),
	)
}

func listDrivesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		volumes, err := commands.NewListDrivesCommand(deps.Resolver).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(volumes, formatVolume)
	}
}

// --- hash_file ---

func hashFileTool() mcp.Tool {
	return mcp.NewTool("hash_file",
		mcp.WithDescription("Compute the content digest of a file."),
		mcp.WithString("path",
			mcp.Description("Absolute path of the file"),
			mcp.Required(),
		),
		mcp.WithString("algorithm",
			mcp.Description("Digest algorithm (md5, sha1, sha224, sha256, sha384, sha512, blake3). Defaults to the configured algorithm."),
		),
	)
}

func hashFileHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return toolError(fmt.Errorf("path is required"))
		}

		hasher, err := deps.hasher(req.GetString("algorithm", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewHashFileCommand(hasher, path).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(result)
	}
}

// --- compare_files ---

func compareFilesTool() mcp.Tool {
	return mcp.NewTool("compare_files",
		mcp.WithDescription("Report whether two files have identical content. A missing file is never equal."),
		mcp.WithString("path_a",
			mcp.Description("First file"),
			mcp.Required(),
		),
		mcp.WithString("path_b",
			mcp.Description("Second file"),
			mcp.Required(),
		),
		mcp.WithString("algorithm",
			mcp.Description("Digest algorithm. Defaults to the configured algorithm."),
		),
	)
}

func compareFilesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hasher, err := deps.hasher(req.GetString("algorithm", ""))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewCompareFilesCommand(hasher, req.GetString("path_a", ""), req.GetString("path_b", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(result)
	}
}

// --- plan_backup ---

func planBackupTool() mcp.Tool {
	return mcp.NewTool("plan_backup",
		backupOptions("Dry-run a backup: report, per file, whether it would be skipped, written, or written as a new version. Nothing is written.")...,
	)
}

func planBackupHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := runBackup(ctx, deps, req, true)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(backupPayload(result))
	}
}

// --- history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List recent backup runs, or the files written by one run when run_id is given."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to list"),
			mcp.DefaultNumber(commands.DefaultHistoryLimit),
		),
		mcp.WithString("run_id",
			mcp.Description("Show this run and the files it wrote"),
		),
	)
}

func historyHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Journal == nil {
			return toolError(errors.New("run journal is disabled"))
		}

		if id := req.GetString("run_id", ""); id != "" {
			result, err := commands.NewShowRunCommand(deps.Journal, id).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			return jsonResult(result)
		}

		runs, err := commands.NewListRunsCommand(deps.Journal, req.GetInt("limit", commands.DefaultHistoryLimit)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(runs, formatRun)
	}
}

// --- helpers ---

func (d Deps) hasher(algorithm string) (ports.Hasher, error) {
	if algorithm == "" {
		algorithm = d.DefaultAlgorithm
	}
	return d.NewHasher(algorithm)
}

func backupOptions(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("source",
			mcp.Description("Absolute path of the directory or file to back up"),
			mcp.Required(),
		),
		mcp.WithString("serial",
			mcp.Description("Serial number of the destination volume (decimal, 0x hex, or ABCD-1234)"),
			mcp.Required(),
		),
		mcp.WithString("relative_path",
			mcp.Description("Subdirectory under the drive root"),
		),
		mcp.WithArray("exclude",
			mcp.Description("Glob patterns (doublestar syntax) of relative paths to skip"),
			mcp.WithStringItems(),
		),
		mcp.WithString("algorithm",
			mcp.Description("Digest algorithm. Defaults to the configured algorithm."),
		),
	}
}

// runBackup builds and executes a backup from tool arguments. Tool calls
// never prompt: the caller already asked for the run.
func runBackup(ctx context.Context, deps Deps, req mcp.CallToolRequest, dryRun bool) (*commands.BackupResult, error) {
	serialArg := req.GetString("serial", "")
	if serialArg == "" {
		return nil, fmt.Errorf("serial is required")
	}
	serial, err := application.ParseSerial("serial", serialArg)
	if err != nil {
		return nil, err
	}

	hasher, err := deps.hasher(req.GetString("algorithm", ""))
	if err != nil {
		return nil, err
	}

	backupDeps := commands.BackupDeps{
		Resolver: deps.Resolver,
		Store:    deps.Store,
		Hasher:   hasher,
	}
	if !dryRun {
		backupDeps.Journal = deps.Journal
	}

	cmd := commands.NewBackupCommand(backupDeps, commands.BackupRequest{
		SourcePath:   req.GetString("source", ""),
		Serial:       serial,
		RelativePath: req.GetString("relative_path", ""),
		Excludes:     req.GetStringSlice("exclude", nil),
		DryRun:       dryRun,
		SkipConfirm:  true,
	})
	return cmd.Execute(ctx)
}

type backupResponse struct {
	Message     string            `json:"message"`
	RunID       string            `json:"run_id,omitempty"`
	Volume      domain.Volume     `json:"volume"`
	Destination string            `json:"destination"`
	DryRun      bool              `json:"dry_run"`
	Stats       domain.RunStats   `json:"stats"`
	Decisions   []domain.Decision `json:"decisions"`
}

func backupPayload(result *commands.BackupResult) backupResponse {
	return backupResponse{
		Message:     result.Message,
		RunID:       result.RunID,
		Volume:      result.Volume,
		Destination: result.Report.Target.Root,
		DryRun:      result.Report.DryRun,
		Stats:       result.Report.Stats,
		Decisions:   result.Report.Decisions,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return mcp.NewToolResultText(string(b)), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatVolume(v domain.Volume) string {
	label := v.Label
	if label == "" {
		label = "-"
	}
	serial := "-"
	if !v.Serial.IsZero() {
		serial = fmt.Sprintf("%s (%s)", v.Serial.String(), v.Serial.Hex())
	}
	return fmt.Sprintf("%s  %s  %s  %s", v.Root, label, serial, humanize.Bytes(v.Total))
}

func formatRun(r domain.RunRecord) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, commands.FormatStats(r.Stats, false))
}
