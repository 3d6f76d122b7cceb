package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	activityOffset int
	activityLimit  int
	activityJSON   bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Browse captured activities",
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activities, newest first",
	Args:  cobra.NoArgs,
	RunE:  runActivityList,
}

var activityShowCmd = &cobra.Command{
	Use:   "show [activity-id]",
	Short: "Show an activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityShow,
}

var activityRmCmd = &cobra.Command{
	Use:   "rm [activity-id]",
	Short: "Delete an activity and its index entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityRm,
}

var activityMetaCmd = &cobra.Command{
	Use:   "meta [activity-id] [key value]",
	Short: "Show or set activity metadata",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("accepts 1 or 3 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: runActivityMeta,
}

func init() {
	activityListCmd.Flags().IntVar(&activityOffset, "offset", 0, "number of activities to skip")
	activityListCmd.Flags().IntVarP(&activityLimit, "limit", "n", 20, "maximum number of activities")
	activityListCmd.Flags().BoolVar(&activityJSON, "json", false, "output as JSON")

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityShowCmd)
	activityCmd.AddCommand(activityRmCmd)
	activityCmd.AddCommand(activityMetaCmd)
	rootCmd.AddCommand(activityCmd)
}

func runActivityList(cmd *cobra.Command, _ []string) error {
	if activityService == nil {
		return notConfigured("activity")
	}

	activities, err := activityService.History(commandContext(cmd), activityOffset, activityLimit)
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	if activityJSON {
		return printJSON(cmd, activities)
	}

	if len(activities) == 0 {
		cmd.Println("No activities recorded.")
		return nil
	}

	for i := range activities {
		a := &activities[i]
		marker := " "
		if a.Vectorized {
			marker = "*"
		}
		cmd.Printf("%s %6d  %s  %-10s %s\n", marker, a.ID,
			a.CreatedAt.Local().Format(time.DateTime), a.UserID, preview(a.Text, 60))
	}
	cmd.Println()
	cmd.Println("* = indexed")
	return nil
}

func runActivityShow(cmd *cobra.Command, args []string) error {
	if activityService == nil {
		return notConfigured("activity")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := activityService.Get(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to get activity: %w", err)
	}

	cmd.Printf("Activity: %d\n", a.ID)
	cmd.Printf("  User: %s\n", a.UserID)
	if a.WindowTitle != "" {
		cmd.Printf("  Window: %s\n", a.WindowTitle)
	}
	cmd.Printf("  Interval: %ds\n", a.IntervalLength)
	cmd.Printf("  Captured: %s\n", a.CreatedAt.Local().Format(time.DateTime))
	cmd.Printf("  Indexed: %t\n", a.Vectorized)
	cmd.Println()
	cmd.Println(a.Text)
	return nil
}

func runActivityRm(cmd *cobra.Command, args []string) error {
	if activityService == nil {
		return notConfigured("activity")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := activityService.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	cmd.Printf("Deleted activity %d\n", id)
	return nil
}

func runActivityMeta(cmd *cobra.Command, args []string) error {
	if activityService == nil {
		return notConfigured("activity")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if len(args) == 3 {
		if err := activityService.SetMetadata(ctx, id, args[1], args[2]); err != nil {
			return fmt.Errorf("failed to set metadata: %w", err)
		}
		cmd.Printf("Set %s on activity %d\n", args[1], id)
		return nil
	}

	meta, err := activityService.Metadata(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	if len(meta) == 0 {
		cmd.Println("No metadata.")
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s = %s\n", k, meta[k])
	}
	return nil
}
