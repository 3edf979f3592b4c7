package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hylla/zukai/internal/adapters/server"
	"github.com/hylla/zukai/internal/adapters/server/common"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/report"
	"github.com/spf13/cobra"
)

// serveCommandRunner starts the HTTP and MCP transports.
var serveCommandRunner = server.Run

// newServeCommand runs the REST API and MCP endpoint over the local diagrams.
func newServeCommand(opts *rootOptions) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagrams over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			cfg := server.Config{
				HTTPBind:      env.cfg.Server.HTTPBind,
				APIEndpoint:   env.cfg.Server.APIEndpoint,
				MCPEndpoint:   env.cfg.Server.MCPEndpoint,
				ServerName:    platformName(opts.appName),
				ServerVersion: version,
			}
			flags := cmd.Flags()
			if flags.Changed("http") {
				cfg.HTTPBind = httpBind
			}
			if flags.Changed("api-endpoint") {
				cfg.APIEndpoint = apiEndpoint
			}
			if flags.Changed("mcp-endpoint") {
				cfg.MCPEndpoint = mcpEndpoint
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env.logger.Info("starting serve mode", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
			err := serveCommandRunner(ctx, cfg, server.Dependencies{
				Service: common.NewAppServiceAdapter(env.logic, env.purpose),
				Logger:  env.logger.Console(),
			})
			if err != nil {
				env.logger.Error("serve mode failed", "err", err)
				return fmt.Errorf("serve: %w", err)
			}
			env.logger.Info("serve mode stopped")
			return nil
		}),
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP bind address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST API base path")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP path")
	return cmd
}

// platformName returns the advertised server name.
func platformName(appName string) string {
	if name := strings.TrimSpace(appName); name != "" {
		return name
	}
	return "zukai"
}

// newHistoryCommand prints recorded change events.
func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		diagram string
		limit   int
		md      markdownOptions
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent changes to the diagrams",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			events, err := collectHistory(cmd.Context(), env, diagram, limit)
			if err != nil {
				return err
			}
			return md.print(cmd.OutOrStdout(), report.HistoryMarkdown(events)+savedMarkdown(cmd.Context(), env))
		}),
	}
	cmd.Flags().StringVar(&diagram, "diagram", "", "logic or purpose (default both)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events to list")
	md.bind(cmd)
	return cmd
}

// savedMarkdown lists when each stored document was last written.
func savedMarkdown(ctx context.Context, env *runtimeEnv) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, d := range []struct {
		kind  domain.DiagramKind
		saved func(context.Context) (time.Time, bool)
	}{
		{domain.DiagramLogic, env.logic.SavedAt},
		{domain.DiagramPurpose, env.purpose.SavedAt},
	} {
		if at, ok := d.saved(ctx); ok {
			fmt.Fprintf(&b, "- %s saved %s\n", d.kind, at.UTC().Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(&b, "- %s not saved\n", d.kind)
		}
	}
	return b.String()
}

// collectHistory merges both diagrams' events newest first when diagram is empty.
func collectHistory(ctx context.Context, env *runtimeEnv, diagram string, limit int) ([]domain.ChangeEvent, error) {
	var events []domain.ChangeEvent
	switch domain.DiagramKind(strings.ToLower(strings.TrimSpace(diagram))) {
	case domain.DiagramLogic:
		return env.logic.History(ctx, limit)
	case domain.DiagramPurpose:
		return env.purpose.History(ctx, limit)
	case "":
		logic, err := env.logic.History(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list logic history: %w", err)
		}
		purpose, err := env.purpose.History(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list purpose history: %w", err)
		}
		events = append(logic, purpose...)
	default:
		return nil, fmt.Errorf("unknown diagram %q: use logic or purpose", diagram)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].ID > events[j].ID
		}
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
