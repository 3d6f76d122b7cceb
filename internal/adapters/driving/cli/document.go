package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

var (
	documentProject int64
	documentName    string
	documentFile    string
	documentReindex bool
	documentJSON    bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage project documents",
	Long: `Documents hold editable text inside a project. Each save is
vectorized once the text is long enough.`,
}

var documentNewCmd = &cobra.Command{
	Use:   "new [text...]",
	Short: "Create a document",
	RunE:  runDocumentNew,
}

var documentEditCmd = &cobra.Command{
	Use:   "edit [doc-id] [text...]",
	Short: "Replace a document's text",
	Long: `Replaces the text of a document. Text is taken from --file, the
remaining arguments, or stdin. A document that was indexed once is not
re-embedded unless --reindex is given or vectorization.reindex_on_edit is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentEdit,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentListCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List documents in a project (default Unassigned)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

var documentRenameCmd = &cobra.Command{
	Use:   "rename [doc-id] [name]",
	Short: "Rename a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentRename,
}

var documentMvCmd = &cobra.Command{
	Use:   "mv [doc-id] [project-id]",
	Short: "Move a document to another project",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentMv,
}

var documentRmCmd = &cobra.Command{
	Use:   "rm [doc-id]",
	Short: "Delete a document and its index entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRm,
}

func init() {
	documentNewCmd.Flags().Int64VarP(&documentProject, "project", "p", 0, "project id (default Unassigned)")
	documentNewCmd.Flags().StringVar(&documentName, "name", "", "document name")
	documentNewCmd.Flags().StringVarP(&documentFile, "file", "f", "", "read text from file")

	documentEditCmd.Flags().StringVarP(&documentFile, "file", "f", "", "read text from file")
	documentEditCmd.Flags().BoolVar(&documentReindex, "reindex", false, "re-embed even if already indexed")

	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentNewCmd)
	documentCmd.AddCommand(documentEditCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentRenameCmd)
	documentCmd.AddCommand(documentMvCmd)
	documentCmd.AddCommand(documentRmCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentNew(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	var text string
	if documentFile != "" || len(args) > 0 {
		var err error
		if text, err = readText(cmd, documentFile, args); err != nil {
			return err
		}
	}

	doc, result, err := documentService.Create(commandContext(cmd), documentProject, documentName, text)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	cmd.Printf("Created document %d %q in project %d (%s)\n", doc.ID, doc.Name, doc.ProjectID, describeResult(result))
	return nil
}

func runDocumentEdit(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	text, err := readText(cmd, documentFile, args[1:])
	if err != nil {
		return err
	}

	result, err := documentService.UpdateText(commandContext(cmd), id, text, domain.VectorizeOptions{Force: documentReindex})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	cmd.Printf("Saved document %d (%s)\n", id, describeResult(result))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %d\n", doc.ID)
	cmd.Printf("  Name: %s\n", doc.Name)
	cmd.Printf("  Project: %d\n", doc.ProjectID)
	cmd.Printf("  Updated: %s\n", doc.UpdatedAt.Local().Format(time.DateTime))
	cmd.Printf("  Indexed: %t\n", doc.Vectorized)
	cmd.Println()
	cmd.Println(doc.Text)
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	ctx := commandContext(cmd)

	var projectID int64
	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		projectID = id
	} else {
		if projectService == nil {
			return notConfigured("project")
		}
		p, err := projectService.EnsureUnassigned(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve Unassigned project: %w", err)
		}
		projectID = p.ID
	}

	docs, err := documentService.List(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("Documents in project %d:\n\n", projectID)
	for i := range docs {
		marker := " "
		if docs[i].Vectorized {
			marker = "*"
		}
		cmd.Printf("%s %6d  %s\n", marker, docs[i].ID, docs[i].Name)
	}
	return nil
}

func runDocumentRename(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := documentService.Rename(commandContext(cmd), id, args[1]); err != nil {
		return fmt.Errorf("failed to rename document: %w", err)
	}
	cmd.Printf("Renamed document %d to %q\n", id, args[1])
	return nil
}

func runDocumentMv(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	projectID, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := documentService.Move(commandContext(cmd), id, projectID); err != nil {
		return fmt.Errorf("failed to move document: %w", err)
	}
	cmd.Printf("Moved document %d to project %d\n", id, projectID)
	return nil
}

func runDocumentRm(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := documentService.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %d\n", id)
	return nil
}
