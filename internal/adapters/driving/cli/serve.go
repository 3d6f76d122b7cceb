package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/recall-cli/internal/adapters/driving/inbox"
	"github.com/custodia-labs/recall-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

var (
	serveMCPPort int
	serveNoInbox bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run background services",
	Long: `Runs until interrupted:
  - the scheduler (periodic index flush, optional reconciliation)
  - the capture inbox watcher, turning JSON drops into activities
  - the MCP server over HTTP, when --mcp-port is given`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "serve MCP over HTTP on this port (0 = disabled)")
	serveCmd.Flags().BoolVar(&serveNoInbox, "no-inbox", false, "do not watch the capture inbox")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	var server *mcp.Server
	if serveMCPPort > 0 {
		s, err := newMCPServer()
		if err != nil {
			return err
		}
		server = s
	}

	g, ctx := errgroup.WithContext(commandContext(cmd))

	g.Go(func() error {
		return scheduler.Start(ctx)
	})

	if !serveNoInbox && activityService != nil && inboxDir != "" {
		w := inbox.New(inboxDir, activityService)
		cmd.Printf("Watching capture inbox %s\n", w.Dir())
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	if server != nil {
		addr := fmt.Sprintf(":%d", serveMCPPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		g.Go(func() error {
			return server.RunHTTP(ctx, addr)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Debug("serve: interrupted")
		return nil
	}
	return err
}
