package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and maintain the vector index",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index size and backend",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

var indexFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Persist the index to disk",
	Args:  cobra.NoArgs,
	RunE:  runIndexFlush,
}

var indexReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Retry vectorization of eligible records that are not indexed",
	Long: `Scans for records whose text is long enough but which were never
indexed, typically because the embedding provider was unavailable, and runs
them through vectorization again.`,
	Args: cobra.NoArgs,
	RunE: runIndexReconcile,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show recent runs of a background task",
	Long: fmt.Sprintf(`Show recent runs of a background task.

Tasks: %s, %s`, domain.TaskIDIndexFlush, domain.TaskIDReconcile),
	Args: cobra.ExactArgs(1),
	RunE: runIndexHistory,
}

func init() {
	indexStatsCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")

	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexFlushCmd)
	indexCmd.AddCommand(indexReconcileCmd)
	indexCmd.AddCommand(indexHistoryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if indexAdmin == nil {
		return notConfigured("index")
	}

	stats := indexAdmin.Stats(commandContext(cmd))
	if indexJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Backend: %s\n", stats.Backend)
	if !stats.Available {
		cmd.Println("Status: unavailable")
		return nil
	}
	cmd.Println("Status: available")
	cmd.Printf("Entries: %d\n", stats.Entries)
	cmd.Printf("Dimensions: %d\n", stats.Dimensions)
	return nil
}

func runIndexFlush(cmd *cobra.Command, _ []string) error {
	if indexAdmin == nil {
		return notConfigured("index")
	}
	if err := indexAdmin.Flush(commandContext(cmd)); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	cmd.Println("Index flushed.")
	return nil
}

func runIndexReconcile(cmd *cobra.Command, _ []string) error {
	if indexAdmin == nil {
		return notConfigured("index")
	}
	n, err := indexAdmin.Reconcile(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	cmd.Printf("Indexed %d records.\n", n)
	return nil
}

func runIndexHistory(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	results, err := scheduler.History(commandContext(cmd), args[0], 10)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}
	for i := range results {
		r := &results[i]
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		cmd.Printf("%s  %6s  %4d items  %s\n", r.StartedAt.Local().Format(time.DateTime),
			r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond), r.ItemsProcessed, status)
	}
	return nil
}
