package coordinator

import (
	"context"
	"sort"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/urlkey"
)

// NextActionsGroup titles the group created by OpenNextGroup.
const NextActionsGroup = "Next Actions"

// AutoGroupAllTabs buckets ungrouped, unpinned, non-system tabs by
// registrable domain and creates one group per domain with two or more
// tabs, titled with the domain. Colors rotate through the fixed palette in
// creation order, continuing from the number of groups that already exist.
// Returns the number of groups created.
func (c *Coordinator) AutoGroupAllTabs(ctx context.Context) (int, error) {
	open, err := c.tabs.Tabs(ctx)
	if err != nil {
		return 0, err
	}
	existing, err := c.tabs.Groups(ctx)
	if err != nil {
		return 0, err
	}

	buckets := map[string][]string{}
	for _, t := range open {
		if t.Pinned || t.GroupID != browser.NoGroup || urlkey.IsSystem(t.URL) {
			continue
		}
		domain, ok := urlkey.RegistrableDomain(t.URL)
		if !ok {
			continue
		}
		buckets[domain] = append(buckets[domain], t.ID)
	}

	domains := make([]string, 0, len(buckets))
	for d, ids := range buckets {
		if len(ids) >= 2 {
			domains = append(domains, d)
		}
	}
	sort.Strings(domains)

	created := 0
	for _, d := range domains {
		color := browser.NextColor(len(existing) + created)
		if _, err := c.tabs.CreateGroup(ctx, d, color, buckets[d]); err != nil {
			return created, err
		}
		c.log.WithField("domain", d).WithField("tabs", len(buckets[d])).Debug("auto-grouped")
		created++
	}
	return created, nil
}

// AssignToGroup moves the tab into the group with exactly the given title,
// creating it when absent. An empty color picks the next palette color.
func (c *Coordinator) AssignToGroup(ctx context.Context, tabID, title, color string) error {
	if tabID == "" || title == "" {
		return errors.NewInvalidRequest("tab id and group name are required")
	}

	groups, err := c.tabs.Groups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.Title == title {
			return c.tabs.AddToGroup(ctx, g.ID, []string{tabID})
		}
	}

	if color == "" {
		color = browser.NextColor(len(groups))
	}
	_, err = c.tabs.CreateGroup(ctx, title, color, []string{tabID})
	return err
}

// OpenNextGroup opens every "next" capture as a tab and collects them into
// a new Next Actions group. Returns the number of tabs opened; zero means
// there was nothing to open and no group was created.
func (c *Coordinator) OpenNextGroup(ctx context.Context) (int, error) {
	data, err := c.captures.All(ctx)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, it := range data.Captures {
		if it.Type != capture.TypeNext {
			continue
		}
		tab, err := c.tabs.Open(ctx, it.URL)
		if err != nil {
			return len(ids), err
		}
		ids = append(ids, tab.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	groups, err := c.tabs.Groups(ctx)
	if err != nil {
		return len(ids), err
	}
	if _, err := c.tabs.CreateGroup(ctx, NextActionsGroup, browser.NextColor(len(groups)), ids); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}

// CloseBookmarkedTabs closes every open tab whose normalized URL is in the
// bookmark index. Returns the number closed.
func (c *Coordinator) CloseBookmarkedTabs(ctx context.Context) (int, error) {
	open, err := c.tabs.Tabs(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, t := range open {
		if urlkey.IsSystem(t.URL) || !c.bookmarks.IsBookmarked(t.URL) {
			continue
		}
		if err := c.tabs.Close(ctx, t.ID); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
