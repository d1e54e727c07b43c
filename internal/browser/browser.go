// Package browser defines the narrow contracts through which the core
// talks to a real browser: the tab directory, the bookmark directory, and
// the page messenger. Implementations live alongside (in-memory) and in the
// cdp subpackage (live Chrome over the DevTools protocol).
package browser

import "context"

// NoGroup marks a tab that belongs to no tab group.
const NoGroup = ""

// Tab is a snapshot of one open tab as reported by the directory.
type Tab struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Active  bool   `json:"active"`
	Pinned  bool   `json:"pinned"`
	GroupID string `json:"group_id,omitempty"`
}

// Group is a named, colored tab group.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Bookmark is one entry of the bookmark directory. Folders are represented
// with an empty URL and are excluded from URL-based lookups.
type Bookmark struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TabDirectory queries and mutates open tabs and tab groups.
type TabDirectory interface {
	// Tabs lists all open tabs.
	Tabs(ctx context.Context) ([]Tab, error)

	// Activate makes the tab active and focuses its window.
	Activate(ctx context.Context, tabID string) error

	// Close closes the tab.
	Close(ctx context.Context, tabID string) error

	// Open opens a new tab at the given URL.
	Open(ctx context.Context, url string) (Tab, error)

	// Groups lists all tab groups.
	Groups(ctx context.Context) ([]Group, error)

	// CreateGroup creates a new group containing the given tabs.
	CreateGroup(ctx context.Context, title, color string, tabIDs []string) (Group, error)

	// AddToGroup moves the given tabs into an existing group.
	AddToGroup(ctx context.Context, groupID string, tabIDs []string) error
}

// BookmarkDirectory lists and creates bookmarks.
type BookmarkDirectory interface {
	All(ctx context.Context) ([]Bookmark, error)
	Create(ctx context.Context, url, title string) (Bookmark, error)
}

// Message is a typed message delivered to a tab's page context.
type Message struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Messenger delivers messages to page contexts. Delivery is best-effort;
// the retry policy (inject listener once, resend once, then drop) lives in
// the coordinator, not here.
type Messenger interface {
	// Send delivers a message to the page in the given tab.
	Send(ctx context.Context, tabID string, msg Message) error

	// Inject (re)installs the page-side listener in the given tab.
	Inject(ctx context.Context, tabID string) error
}

// TabEventKind enumerates the tab lifecycle events the coordinator reacts to.
type TabEventKind string

const (
	TabCreated   TabEventKind = "created"
	TabUpdated   TabEventKind = "updated"
	TabActivated TabEventKind = "activated"
	TabRemoved   TabEventKind = "removed"
)

// TabEvent is one tab lifecycle event. Updated events carry whether this
// update changed the URL and whether the load reached "complete"; Removed
// events carry only the tab ID, since the platform no longer knows the
// closed tab's URL.
type TabEvent struct {
	Kind       TabEventKind
	Tab        Tab
	URLChanged bool
	Complete   bool
}
