package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/hpungsan/tabstash/internal/errors"
)

// MemoryTabs is an in-process TabDirectory used by tests and the simulate
// command. Mutations are recorded so assertions can inspect what the
// coordinator asked the browser to do.
type MemoryTabs struct {
	mu     sync.Mutex
	tabs   []Tab
	groups []Group
	nextID int

	// Closed and Activated record tab IDs in call order.
	Closed    []string
	Activated []string
}

// NewMemoryTabs creates an empty in-memory tab directory.
func NewMemoryTabs() *MemoryTabs {
	return &MemoryTabs{}
}

// Add opens a tab with a generated ID and returns it.
func (m *MemoryTabs) Add(url, title string) Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(url, title)
}

// AddPinned opens a pinned tab.
func (m *MemoryTabs) AddPinned(url, title string) Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.addLocked(url, title)
	m.tabs[len(m.tabs)-1].Pinned = true
	t.Pinned = true
	return t
}

func (m *MemoryTabs) addLocked(url, title string) Tab {
	m.nextID++
	t := Tab{ID: fmt.Sprintf("tab-%d", m.nextID), URL: url, Title: title}
	m.tabs = append(m.tabs, t)
	return t
}

// Get returns the current state of a tab.
func (m *MemoryTabs) Get(tabID string) (Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tabs {
		if t.ID == tabID {
			return t, true
		}
	}
	return Tab{}, false
}

// Tabs implements TabDirectory.
func (m *MemoryTabs) Tabs(ctx context.Context) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tab, len(m.tabs))
	copy(out, m.tabs)
	return out, nil
}

// Activate implements TabDirectory.
func (m *MemoryTabs) Activate(ctx context.Context, tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for i := range m.tabs {
		m.tabs[i].Active = m.tabs[i].ID == tabID
		if m.tabs[i].ID == tabID {
			found = true
		}
	}
	if !found {
		return errors.NewNotFound(tabID)
	}
	m.Activated = append(m.Activated, tabID)
	return nil
}

// Close implements TabDirectory.
func (m *MemoryTabs) Close(ctx context.Context, tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tabs {
		if t.ID == tabID {
			m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
			m.Closed = append(m.Closed, tabID)
			return nil
		}
	}
	return errors.NewNotFound(tabID)
}

// Open implements TabDirectory.
func (m *MemoryTabs) Open(ctx context.Context, url string) (Tab, error) {
	return m.Add(url, ""), nil
}

// Groups implements TabDirectory.
func (m *MemoryTabs) Groups(ctx context.Context) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Group, len(m.groups))
	copy(out, m.groups)
	return out, nil
}

// CreateGroup implements TabDirectory.
func (m *MemoryTabs) CreateGroup(ctx context.Context, title, color string, tabIDs []string) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := Group{ID: fmt.Sprintf("group-%d", len(m.groups)+1), Title: title, Color: color}
	m.groups = append(m.groups, g)
	m.assignLocked(g.ID, tabIDs)
	return g, nil
}

// AddToGroup implements TabDirectory.
func (m *MemoryTabs) AddToGroup(ctx context.Context, groupID string, tabIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.ID == groupID {
			m.assignLocked(groupID, tabIDs)
			return nil
		}
	}
	return errors.NewNotFound(groupID)
}

func (m *MemoryTabs) assignLocked(groupID string, tabIDs []string) {
	for i := range m.tabs {
		for _, id := range tabIDs {
			if m.tabs[i].ID == id {
				m.tabs[i].GroupID = groupID
			}
		}
	}
}

// MemoryBookmarks is an in-process BookmarkDirectory.
type MemoryBookmarks struct {
	mu     sync.Mutex
	marks  []Bookmark
	nextID int

	// CreateErr, when set, is returned by Create. Lets tests exercise the
	// swallow-on-bookmark-failure path of reference captures.
	CreateErr error
}

// NewMemoryBookmarks creates an empty in-memory bookmark directory.
func NewMemoryBookmarks() *MemoryBookmarks {
	return &MemoryBookmarks{}
}

// All implements BookmarkDirectory.
func (m *MemoryBookmarks) All(ctx context.Context) ([]Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bookmark, len(m.marks))
	copy(out, m.marks)
	return out, nil
}

// Create implements BookmarkDirectory.
func (m *MemoryBookmarks) Create(ctx context.Context, url, title string) (Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return Bookmark{}, m.CreateErr
	}
	m.nextID++
	b := Bookmark{ID: fmt.Sprintf("bm-%d", m.nextID), URL: url, Title: title}
	m.marks = append(m.marks, b)
	return b, nil
}

// Remove deletes a bookmark by ID.
func (m *MemoryBookmarks) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.marks {
		if b.ID == id {
			m.marks = append(m.marks[:i], m.marks[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFound(id)
}

// SentMessage records one messenger delivery attempt.
type SentMessage struct {
	TabID   string
	Message Message
}

// MemoryMessenger is an in-process Messenger. FailFirst makes the first N
// Send calls fail so tests can exercise the inject-and-retry path.
type MemoryMessenger struct {
	mu        sync.Mutex
	FailFirst int

	Sent     []SentMessage
	Injected []string
}

// NewMemoryMessenger creates a messenger that accepts everything.
func NewMemoryMessenger() *MemoryMessenger {
	return &MemoryMessenger{}
}

// Send implements Messenger.
func (m *MemoryMessenger) Send(ctx context.Context, tabID string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFirst > 0 {
		m.FailFirst--
		return fmt.Errorf("page not ready in %s", tabID)
	}
	m.Sent = append(m.Sent, SentMessage{TabID: tabID, Message: msg})
	return nil
}

// Inject implements Messenger.
func (m *MemoryMessenger) Inject(ctx context.Context, tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Injected = append(m.Injected, tabID)
	return nil
}

// Disconnected is a TabDirectory and Messenger for sessions without an
// attached browser; every operation reports NO_BROWSER.
type Disconnected struct{}

// Tabs implements TabDirectory.
func (Disconnected) Tabs(ctx context.Context) ([]Tab, error) { return nil, errors.NewNoBrowser() }

// Activate implements TabDirectory.
func (Disconnected) Activate(ctx context.Context, tabID string) error { return errors.NewNoBrowser() }

// Close implements TabDirectory.
func (Disconnected) Close(ctx context.Context, tabID string) error { return errors.NewNoBrowser() }

// Open implements TabDirectory.
func (Disconnected) Open(ctx context.Context, url string) (Tab, error) {
	return Tab{}, errors.NewNoBrowser()
}

// Groups implements TabDirectory.
func (Disconnected) Groups(ctx context.Context) ([]Group, error) { return nil, errors.NewNoBrowser() }

// CreateGroup implements TabDirectory.
func (Disconnected) CreateGroup(ctx context.Context, title, color string, tabIDs []string) (Group, error) {
	return Group{}, errors.NewNoBrowser()
}

// AddToGroup implements TabDirectory.
func (Disconnected) AddToGroup(ctx context.Context, groupID string, tabIDs []string) error {
	return errors.NewNoBrowser()
}

// Send implements Messenger.
func (Disconnected) Send(ctx context.Context, tabID string, msg Message) error {
	return errors.NewNoBrowser()
}

// Inject implements Messenger.
func (Disconnected) Inject(ctx context.Context, tabID string) error {
	return errors.NewNoBrowser()
}
