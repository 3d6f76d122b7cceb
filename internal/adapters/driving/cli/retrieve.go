package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Find the records most similar to a query",
	Long: `Embeds the query and returns the k nearest activities and documents,
best first. This is the context a chat engine would be grounded with.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", 5, "maximum number of results")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return notConfigured("retrieval")
	}

	query := strings.Join(args, " ")
	items, err := retrievalService.Retrieve(commandContext(cmd), query, retrieveK)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return fmt.Errorf("%w\nRun 'recall settings embedding' to configure a provider", err)
		}
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		if items == nil {
			items = []domain.RetrievedItem{}
		}
		return printJSON(cmd, items)
	}

	if len(items) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range items {
		cmd.Printf("  [%d] %s %d (%.2f)\n", i+1, items[i].Kind, items[i].ID, items[i].Score)
		cmd.Printf("      %s\n", preview(items[i].Text, 120))
	}
	return nil
}
