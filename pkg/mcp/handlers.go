package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/esmshift/pkg/jsparse"
	"github.com/gnana997/esmshift/pkg/parser"
	"github.com/gnana997/esmshift/pkg/transform"
	"github.com/gnana997/esmshift/pkg/verify"
)

func (s *Server) handleConvertSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := toolOptions(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.transformer.Transform([]byte(code), opts)
	if err != nil {
		return mcp.NewToolResultError("Failed to convert selection: " + describeError(err)), nil
	}

	if req.GetBool("verify", false) {
		vopts := verify.Options{Language: opts.Language, Module: opts.Target == transform.TargetDynamicImport}
		if err := verify.Check(res.Code, vopts); err != nil {
			return mcp.NewToolResultError("Failed to convert selection: " + err.Error()), nil
		}
	}

	s.logger.Debug("converted selection",
		"target", opts.Target.String(),
		"imports_rewritten", res.ImportsRewritten,
		"exports_expanded", res.ExportsExpanded)

	return mcp.NewToolResultText(res.Code), nil
}

func (s *Server) handleInspectModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := toolOptions(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	decls, err := s.transformer.Inspect([]byte(code), opts)
	if err != nil {
		return mcp.NewToolResultError("Failed to inspect module: " + describeError(err)), nil
	}
	return jsonResult(decls)
}

func toolOptions(req mcp.CallToolRequest) (transform.Options, error) {
	target, err := transform.ParseTarget(req.GetString("target", ""))
	if err != nil {
		return transform.Options{}, err
	}
	name := req.GetString("language", "")
	lang := parser.ParseLanguageString(name)
	if lang == parser.LanguageUnknown {
		return transform.Options{}, fmt.Errorf("unknown language %q", name)
	}
	return transform.Options{Target: target, Language: lang}, nil
}

// describeError prefixes parse errors with their position.
func describeError(err error) string {
	var perr *jsparse.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("%d:%d: %s", perr.Line, perr.Column, perr.Message)
	}
	return err.Error()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
