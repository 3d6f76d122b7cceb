package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var (
	captureUser     string
	captureTitle    string
	captureInterval int
	captureFile     string
)

var captureCmd = &cobra.Command{
	Use:   "capture [text...]",
	Short: "Record a captured activity",
	Long: `Stores one capture as an immutable activity record and vectorizes it
when the text is long enough. Text is taken from --file, the arguments,
or stdin.

Examples:
  recall capture --user alice --title "Terminal" "ran the migration"
  pbpaste | recall capture --user alice`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureUser, "user", "u", "", "user id (default capture.user_id)")
	captureCmd.Flags().StringVarP(&captureTitle, "title", "t", "", "focused window title")
	captureCmd.Flags().IntVarP(&captureInterval, "interval", "i", 0, "capture interval in seconds (default capture.default_interval)")
	captureCmd.Flags().StringVarP(&captureFile, "file", "f", "", "read text from file")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	if activityService == nil {
		return notConfigured("activity")
	}

	text, err := readText(cmd, captureFile, args)
	if err != nil {
		return err
	}

	record, result, err := activityService.Capture(commandContext(cmd), domain.CaptureRequest{
		UserID:         captureUser,
		Text:           text,
		WindowTitle:    captureTitle,
		IntervalLength: captureInterval,
	})
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	cmd.Printf("Captured activity %d (%s)\n", record.ID, describeResult(result))
	return nil
}
