// Package mcp exposes the dispatcher's actions as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tabstash/internal/api"
	"github.com/hpungsan/tabstash/internal/config"
)

// toolEntry pairs a tool definition with the dispatcher action it runs.
type toolEntry struct {
	def    mcp.Tool
	action string
}

// toolRegistry maps tool names to definitions and actions.
var toolRegistry = map[string]toolEntry{
	"stash_save_capture":     {def: saveCaptureToolDef, action: "save_capture"},
	"stash_save_inbox":       {def: saveInboxToolDef, action: "save_uncategorized"},
	"stash_save_scratchpad":  {def: saveScratchpadToolDef, action: "save_scratchpad"},
	"stash_save_annotation":  {def: saveAnnotationToolDef, action: "save_annotation"},
	"stash_delete_item":      {def: deleteItemToolDef, action: "delete_item"},
	"stash_get_data":         {def: getDataToolDef, action: "get_data"},
	"stash_get_settings":     {def: getSettingsToolDef, action: "get_settings"},
	"stash_save_settings":    {def: saveSettingsToolDef, action: "save_settings"},
	"stash_get_metrics":      {def: getMetricsToolDef, action: "get_metrics"},
	"stash_get_bookmarks":    {def: getBookmarksToolDef, action: "get_bookmarks"},
	"stash_search":           {def: searchToolDef, action: "search"},
	"stash_assign_group":     {def: assignGroupToolDef, action: "assign_group"},
	"stash_auto_group":       {def: autoGroupToolDef, action: "auto_group"},
	"stash_open_next_group":  {def: openNextGroupToolDef, action: "open_next_group"},
	"stash_close_bookmarked": {def: closeBookmarkedToolDef, action: "close_bookmarked"},
	"stash_clear_data":       {def: clearDataToolDef, action: "clear_data"},
	"stash_export":           {def: exportToolDef, action: "export"},
	"stash_get_tab_groups":   {def: getTabGroupsToolDef, action: "get_tab_groups"},
	"stash_close_tab":        {def: closeTabToolDef, action: "close_tab"},
	"stash_switch_to_tab":    {def: switchToTabToolDef, action: "switch_to_tab"},
	"stash_command":          {def: commandToolDef, action: "command"},
	"stash_delete_bookmark":  {def: deleteBookmarkToolDef, action: "delete_bookmark"},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with tabstash tools registered. Tools
// listed in cfg.DisabledTools are excluded from registration.
func NewServer(d *api.Dispatcher, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tabstash",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(d)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, h.handle(entry.action))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(d *api.Dispatcher, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(d, cfg, version))
}
