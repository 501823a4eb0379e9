package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

const uriScheme = "drawsync://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "draws/{date}",
		Name:        "draw",
		Description: "Stored result for one draw date",
		MIMEType:    "application/json",
	}, s.handleDrawResource)
}

func (s *Server) handleDrawResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	date := extractDate(req.Params.URI)
	if date == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Jobs.Draw(ctx, date)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidDate) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading draw: %w", err)
	}

	data, err := json.MarshalIndent(toDrawOutput(rec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling draw: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDate extracts the date from drawsync://draws/{date}.
func extractDate(uri string) string {
	date, ok := strings.CutPrefix(uri, uriScheme+"draws/")
	if !ok || strings.Contains(date, "/") {
		return ""
	}
	return date
}
