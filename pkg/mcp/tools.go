package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	toolConvertSelection = "convert_selection"
	toolInspectModule    = "inspect_module"
)

// ToolNames returns the names of the registered tools.
func ToolNames() []string {
	return []string{toolConvertSelection, toolInspectModule}
}

func convertSelectionTool() mcp.Tool {
	return mcp.NewTool(toolConvertSelection,
		mcp.WithDescription("Rewrite ES module import declarations in a code selection to require() calls "+
			"or awaited import() calls. With the require target the first export declaration is expanded "+
			"to module.exports assignments. Returns the converted code."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("JavaScript or TypeScript source to convert"),
		),
		mcp.WithString("target",
			mcp.Description("Module form to produce (default require)"),
			mcp.Enum("require", "import"),
		),
		mcp.WithString("language",
			mcp.Description("Source language (default javascript)"),
			mcp.Enum("javascript", "typescript", "tsx"),
		),
		mcp.WithBoolean("verify",
			mcp.Description("Re-parse the converted code and fail if it is not valid"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func inspectModuleTool() mcp.Tool {
	return mcp.NewTool(toolInspectModule,
		mcp.WithDescription("Classify every top-level import and export declaration and report whether "+
			"it can be converted, as a JSON array."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("JavaScript or TypeScript module source"),
		),
		mcp.WithString("target",
			mcp.Description("Target the report is computed for (default require)"),
			mcp.Enum("require", "import"),
		),
		mcp.WithString("language",
			mcp.Description("Source language (default javascript)"),
			mcp.Enum("javascript", "typescript", "tsx"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
