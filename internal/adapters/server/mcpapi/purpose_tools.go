package mcpapi

import (
	"github.com/hylla/zukai/internal/adapters/server/common"
	"github.com/hylla/zukai/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerPurposeTools registers the `zukai.purpose.*` tools.
func registerPurposeTools(srv *mcpserver.MCPServer, svc common.PurposeService) {
	slots := make([]string, 0, 4)
	for _, s := range domain.TimelineSlots() {
		slots = append(slots, string(s))
	}
	stakeholderCategories := make([]string, 0, 4)
	for _, c := range domain.StakeholderCategories() {
		stakeholderCategories = append(stakeholderCategories, string(c))
	}
	layers := []string{string(domain.LayerSupporting), string(domain.LayerLeading)}
	requireValue := func(in common.SelectRequest) error {
		return requireFields("value", in.Value)
	}

	srv.AddTool(
		newTool("zukai.purpose.state", false,
			mcp.WithDescription("Return the purpose mode, slot, comparisons and the active partition."),
		),
		readTool("zukai.purpose.state", svc.PurposeState),
	)
	srv.AddTool(
		newTool("zukai.purpose.set_mode", true,
			mcp.WithDescription("Switch between single, timeline and comparison modes."),
			mcp.WithString("value", mcp.Required(), mcp.Description("Mode"), mcp.Enum("single", "timeline", "comparison")),
		),
		bindTool("zukai.purpose.set_mode", svc.SetMode, requireValue),
	)
	srv.AddTool(
		newTool("zukai.purpose.select_timeline", true,
			mcp.WithDescription("Select the active timeline slot."),
			mcp.WithString("value", mcp.Required(), mcp.Description("Timeline slot"), mcp.Enum(slots...)),
		),
		bindTool("zukai.purpose.select_timeline", svc.SelectTimeline, requireValue),
	)
	srv.AddTool(
		newTool("zukai.purpose.add_comparison", true,
			mcp.WithDescription("Add a named comparison and select it."),
			mcp.WithString("value", mcp.Required(), mcp.Description("Comparison name")),
		),
		bindTool("zukai.purpose.add_comparison", svc.AddComparison, requireValue),
	)
	srv.AddTool(
		newTool("zukai.purpose.remove_comparison", true,
			mcp.WithDescription("Delete a named comparison."),
			mcp.WithString("value", mcp.Required(), mcp.Description("Comparison name")),
		),
		bindTool("zukai.purpose.remove_comparison", svc.RemoveComparison, requireValue),
	)
	srv.AddTool(
		newTool("zukai.purpose.select_comparison", true,
			mcp.WithDescription("Select the active comparison."),
			mcp.WithString("value", mcp.Required(), mcp.Description("Comparison name")),
		),
		bindTool("zukai.purpose.select_comparison", svc.SelectComparison, requireValue),
	)
	srv.AddTool(
		newTool("zukai.purpose.add_stakeholder", true,
			mcp.WithDescription("Add a stakeholder to the active partition."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Name (1-30 characters)")),
			mcp.WithString("role", mcp.Description("Role (up to 30 characters)")),
			mcp.WithString("goal", mcp.Description("Goal (up to 30 characters)")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Stakeholder category"), mcp.Enum(stakeholderCategories...)),
			mcp.WithString("layer", mcp.Required(), mcp.Description("Ring half"), mcp.Enum(layers...)),
		),
		bindTool("zukai.purpose.add_stakeholder", svc.AddStakeholder, func(in common.AddStakeholderRequest) error {
			return requireFields("name", in.Name, "category", in.Category, "layer", in.Layer)
		}),
	)
	srv.AddTool(
		newTool("zukai.purpose.update_stakeholder", true,
			mcp.WithDescription("Patch a stakeholder of the active partition. Omitted fields are kept."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Stakeholder id")),
			mcp.WithString("name", mcp.Description("New name")),
			mcp.WithString("role", mcp.Description("New role")),
			mcp.WithString("goal", mcp.Description("New goal")),
			mcp.WithString("category", mcp.Description("New category"), mcp.Enum(stakeholderCategories...)),
			mcp.WithString("layer", mcp.Description("New layer"), mcp.Enum(layers...)),
		),
		bindTool("zukai.purpose.update_stakeholder", svc.UpdateStakeholder, func(in common.UpdateStakeholderRequest) error {
			return requireFields("id", in.ID)
		}),
	)
	srv.AddTool(
		newTool("zukai.purpose.remove_stakeholder", true,
			mcp.WithDescription("Delete a stakeholder from the active partition."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Stakeholder id")),
		),
		bindTool("zukai.purpose.remove_stakeholder", svc.RemoveStakeholder, func(in common.DeleteRequest) error {
			return requireFields("id", in.ID)
		}),
	)
	srv.AddTool(
		newTool("zukai.purpose.update_purpose", true,
			mcp.WithDescription("Edit the purpose title or description of the active partition."),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
		),
		bindTool("zukai.purpose.update_purpose", svc.UpdatePurpose, nil),
	)
	srv.AddTool(
		newTool("zukai.purpose.reset", true,
			mcp.WithDescription("Restore the default timeline and clear every comparison."),
		),
		bindTool("zukai.purpose.reset", svc.ResetPurpose, nil),
	)
	srv.AddTool(
		newTool("zukai.purpose.import", true,
			mcp.WithDescription("Replace the purpose model from a full or single-partition document."),
			mcp.WithObject("document", mcp.Required(), mcp.Description("Exported purpose document")),
		),
		importTool("zukai.purpose.import", svc.ImportPurpose),
	)
	srv.AddTool(
		newTool("zukai.purpose.export", false,
			mcp.WithDescription("Return the full purpose model as an exportable document."),
		),
		readTool("zukai.purpose.export", svc.ExportPurpose),
	)
	srv.AddTool(
		newTool("zukai.purpose.export_image", false,
			mcp.WithDescription("Render the active purpose ring as an image."),
			mcp.WithString("format", mcp.Description("png or svg (defaults to png)"), mcp.Enum("png", "svg")),
		),
		imageTool(svc.ExportPurposeImage),
	)
}
