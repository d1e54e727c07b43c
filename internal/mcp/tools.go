package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Argument schemas mirror the api package's request
// types; decoding and validation happen behind the dispatcher.

var saveCaptureToolDef = mcp.NewTool("stash_save_capture",
	mcp.WithDescription("Save a tab as a triaged capture (next, someday, or reference). Reference captures also create a bookmark."),
	mcp.WithString("url", mcp.Required(), mcp.Description("Tab URL")),
	mcp.WithString("title", mcp.Description("Tab title; defaults to the URL")),
	mcp.WithString("note", mcp.Description("Short note attached to the capture")),
	mcp.WithString("type", mcp.Required(), mcp.Description("One of: next, someday, reference")),
)

var saveInboxToolDef = mcp.NewTool("stash_save_inbox",
	mcp.WithDescription("Save a tab into the uncategorized inbox. No-op if the URL is already captured."),
	mcp.WithString("url", mcp.Required(), mcp.Description("Tab URL")),
	mcp.WithString("title", mcp.Description("Tab title")),
)

var saveScratchpadToolDef = mcp.NewTool("stash_save_scratchpad",
	mcp.WithDescription("Save a free-form scratchpad note (max 500 characters)."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
)

var saveAnnotationToolDef = mcp.NewTool("stash_save_annotation",
	mcp.WithDescription("Attach a note and extra keywords to a URL's metric record."),
	mcp.WithString("url", mcp.Required(), mcp.Description("Target URL")),
	mcp.WithString("title", mcp.Description("Title, used if the record has none")),
	mcp.WithString("note", mcp.Description("Annotation text")),
	mcp.WithArray("keywords", mcp.Description("Extra keywords to merge"), mcp.WithStringItems()),
)

var deleteItemToolDef = mcp.NewTool("stash_delete_item",
	mcp.WithDescription("Delete one item from a collection."),
	mcp.WithString("list", mcp.Required(), mcp.Description("One of: captures, uncategorized, scratchpad")),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item ID")),
)

var getDataToolDef = mcp.NewTool("stash_get_data",
	mcp.WithDescription("Return all captures, inbox items, and scratchpad notes."),
)

var getSettingsToolDef = mcp.NewTool("stash_get_settings",
	mcp.WithDescription("Return the current settings merged over defaults."),
)

var saveSettingsToolDef = mcp.NewTool("stash_save_settings",
	mcp.WithDescription("Patch settings; omitted fields are left unchanged."),
	mcp.WithBoolean("enabled", mcp.Description("Master switch for capture and tracking")),
	mcp.WithBoolean("auto_dedupe", mcp.Description("Close duplicate tabs on navigation")),
	mcp.WithNumber("intercept_threshold", mcp.Description("Capture sensitivity, 0-100")),
	mcp.WithArray("excluded_domains", mcp.Description("Domains exempt from capture and tracking"), mcp.WithStringItems()),
	mcp.WithBoolean("new_tab_override", mcp.Description("Serve the capture dashboard on new tabs")),
)

var getMetricsToolDef = mcp.NewTool("stash_get_metrics",
	mcp.WithDescription("Return visit metrics ranked by score."),
	mcp.WithNumber("limit", mcp.Description("Max records; defaults to 20")),
)

var getBookmarksToolDef = mcp.NewTool("stash_get_bookmarks",
	mcp.WithDescription("Return bookmarks joined with their metric-record notes and visit counts."),
)

var searchToolDef = mcp.NewTool("stash_search",
	mcp.WithDescription("Search captures, inbox, and frequent sites; returns the suggestion list with a search-the-web fallback."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
)

var assignGroupToolDef = mcp.NewTool("stash_assign_group",
	mcp.WithDescription("Move a tab into the named tab group, creating the group if needed."),
	mcp.WithString("tab_id", mcp.Required(), mcp.Description("Tab ID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Group title")),
	mcp.WithString("color", mcp.Description("Group color; next palette color if omitted")),
)

var autoGroupToolDef = mcp.NewTool("stash_auto_group",
	mcp.WithDescription("Group ungrouped tabs by registrable domain (2+ tabs per domain)."),
)

var openNextGroupToolDef = mcp.NewTool("stash_open_next_group",
	mcp.WithDescription("Open every 'next' capture as a tab in a new Next Actions group."),
)

var closeBookmarkedToolDef = mcp.NewTool("stash_close_bookmarked",
	mcp.WithDescription("Close every open tab whose URL is bookmarked."),
)

var clearDataToolDef = mcp.NewTool("stash_clear_data",
	mcp.WithDescription("Clear entire collections."),
	mcp.WithArray("categories", mcp.Required(),
		mcp.Description("Subset of: captures, uncategorized, scratchpad, metrics"), mcp.WithStringItems()),
)

var exportToolDef = mcp.NewTool("stash_export",
	mcp.WithDescription("Write all collections to a markdown file."),
	mcp.WithString("path", mcp.Description("Output path; defaults to the exports directory")),
)

var getTabGroupsToolDef = mcp.NewTool("stash_get_tab_groups",
	mcp.WithDescription("List current tab groups."),
)

var closeTabToolDef = mcp.NewTool("stash_close_tab",
	mcp.WithDescription("Close a tab."),
	mcp.WithString("tab_id", mcp.Required(), mcp.Description("Tab ID")),
)

var switchToTabToolDef = mcp.NewTool("stash_switch_to_tab",
	mcp.WithDescription("Activate a tab and focus its window."),
	mcp.WithString("tab_id", mcp.Required(), mcp.Description("Tab ID")),
)

var commandToolDef = mcp.NewTool("stash_command",
	mcp.WithDescription("Show a command overlay in the active tab. No-op without an active tab."),
	mcp.WithString("command", mcp.Required(), mcp.Description("One of: triage, assign-group, scratchpad, annotate")),
)

var deleteBookmarkToolDef = mcp.NewTool("stash_delete_bookmark",
	mcp.WithDescription("Delete a bookmark by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Bookmark ID")),
)
