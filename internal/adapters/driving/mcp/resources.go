package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for recall resources.
	uriScheme = "recall://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "All projects with their document IDs",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/documents",
		Name:        "project-documents",
		Description: "Documents belonging to a project",
		MIMEType:    "application/json",
	}, s.handleProjectDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleProjectsResource returns a list of all projects.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Project == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	projects, err := s.ports.Project.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	type projectInfo struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		DocumentIDs []int64 `json:"document_ids"`
	}

	infos := make([]projectInfo, len(projects))
	for i := range projects {
		ids := projects[i].DocumentIDs
		if ids == nil {
			ids = []int64{}
		}
		infos[i] = projectInfo{
			ID:          projects[i].ID,
			Name:        projects[i].Name,
			DocumentIDs: ids,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleProjectDocumentsResource returns the documents of one project.
func (s *Server) handleProjectDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	projectID, ok := extractProjectID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Vectorized bool   `json:"vectorized"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:         docs[i].ID,
			Name:       docs[i].Name,
			Vectorized: docs[i].Vectorized,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleDocumentContentResource returns the text of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID, ok := extractDocumentID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text,
		}},
	}, nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractProjectID parses recall://projects/{projectId}/documents.
func extractProjectID(uri string) (int64, bool) {
	const prefix = uriScheme + "projects/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0, false
	}
	return parseID(strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix))
}

// extractDocumentID parses recall://documents/{documentId}.
func extractDocumentID(uri string) (int64, bool) {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	return parseID(strings.TrimPrefix(uri, prefix))
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
