// Package api is the action-string dispatch surface shared by every
// delivery layer (MCP, HTTP, CLI). One action name maps to one handler;
// an unrecognized action is answered with an explicit UNKNOWN_ACTION
// error instead of being ignored.
package api

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/tabstash/internal/bookmarks"
	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/coordinator"
	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/settings"
)

// Deps are the dispatcher's collaborators.
type Deps struct {
	Captures  *capture.Store
	Settings  *settings.Store
	Coord     *coordinator.Coordinator
	Tabs      browser.TabDirectory
	Bookmarks browser.BookmarkDirectory
	Cache     *bookmarks.Cache
	BaseDir   string
	Log       *logrus.Logger
}

// Dispatcher routes action strings to handlers.
type Dispatcher struct {
	captures *capture.Store
	settings *settings.Store
	coord    *coordinator.Coordinator
	tabs     browser.TabDirectory
	marks    browser.BookmarkDirectory
	cache    *bookmarks.Cache
	baseDir  string
	log      *logrus.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		captures: deps.Captures,
		settings: deps.Settings,
		coord:    deps.Coord,
		tabs:     deps.Tabs,
		marks:    deps.Bookmarks,
		cache:    deps.Cache,
		baseDir:  deps.BaseDir,
		log:      log,
	}
}

// handlerFunc handles one decoded action.
type handlerFunc func(d *Dispatcher, ctx context.Context, args map[string]any) (any, error)

// actionRegistry maps action names to handlers.
var actionRegistry = map[string]handlerFunc{
	"save_capture":         (*Dispatcher).saveCapture,
	"save_uncategorized":   (*Dispatcher).saveUncategorized,
	"save_scratchpad":      (*Dispatcher).saveScratchpad,
	"save_annotation":      (*Dispatcher).saveAnnotation,
	"delete_item":          (*Dispatcher).deleteItem,
	"get_data":             (*Dispatcher).getData,
	"get_settings":         (*Dispatcher).getSettings,
	"save_settings":        (*Dispatcher).saveSettings,
	"get_metrics":          (*Dispatcher).getMetrics,
	"get_bookmarks":        (*Dispatcher).getBookmarks,
	"search":               (*Dispatcher).search,
	"assign_group":         (*Dispatcher).assignGroup,
	"auto_group":           (*Dispatcher).autoGroup,
	"open_next_group":      (*Dispatcher).openNextGroup,
	"close_bookmarked":     (*Dispatcher).closeBookmarked,
	"clear_data":           (*Dispatcher).clearData,
	"export":               (*Dispatcher).export,
	"get_tab_groups":       (*Dispatcher).getTabGroups,
	"get_suggested_groups": (*Dispatcher).getSuggestedGroups,
	"close_tab":            (*Dispatcher).closeTab,
	"switch_to_tab":        (*Dispatcher).switchToTab,
	"command":              (*Dispatcher).command,
	"delete_bookmark":      (*Dispatcher).deleteBookmark,
}

// Actions returns every registered action name.
func Actions() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the handler for an action.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, args map[string]any) (any, error) {
	h, ok := actionRegistry[action]
	if !ok {
		return nil, errors.NewUnknownAction(action)
	}
	return h(d, ctx, args)
}
