package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	projectFromActivities []int64
	projectJSON           bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a project",
	Long: `Creates a project. Each activity given with --from-activity is copied
into a new document of the project and vectorized.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectNew,
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename [project-id] [name]",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectRename,
}

var projectRmCmd = &cobra.Command{
	Use:   "rm [project-id]",
	Short: "Delete a project and all its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRm,
}

func init() {
	projectListCmd.Flags().BoolVar(&projectJSON, "json", false, "output as JSON")
	projectNewCmd.Flags().Int64SliceVar(&projectFromActivities, "from-activity", nil, "activity ids to copy into documents")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectRmCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return notConfigured("project")
	}

	projects, err := projectService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if projectJSON {
		return printJSON(cmd, projects)
	}

	if len(projects) == 0 {
		cmd.Println("No projects.")
		return nil
	}
	for i := range projects {
		cmd.Printf("%6d  %s (%d documents)\n", projects[i].ID, projects[i].Name, len(projects[i].DocumentIDs))
	}
	return nil
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return notConfigured("project")
	}

	p, err := projectService.Create(commandContext(cmd), args[0], projectFromActivities)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	cmd.Printf("Created project %d %q with %d documents\n", p.ID, p.Name, len(p.DocumentIDs))
	return nil
}

func runProjectRename(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return notConfigured("project")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := projectService.Rename(commandContext(cmd), id, args[1]); err != nil {
		return fmt.Errorf("failed to rename project: %w", err)
	}
	cmd.Printf("Renamed project %d to %q\n", id, args[1])
	return nil
}

func runProjectRm(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return notConfigured("project")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := projectService.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	cmd.Printf("Deleted project %d\n", id)
	return nil
}
