package api

import (
	"context"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/export"
	"github.com/hpungsan/tabstash/internal/settings"
)

// Request types for each action

// SaveCaptureRequest represents the arguments for save_capture.
type SaveCaptureRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Note  string `json:"note,omitempty"`
	Type  string `json:"type"`
}

// SaveUncategorizedRequest represents the arguments for save_uncategorized.
type SaveUncategorizedRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SaveScratchpadRequest represents the arguments for save_scratchpad.
type SaveScratchpadRequest struct {
	Text string `json:"text"`
}

// SaveAnnotationRequest represents the arguments for save_annotation.
type SaveAnnotationRequest struct {
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Note     string   `json:"note,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// DeleteItemRequest represents the arguments for delete_item.
type DeleteItemRequest struct {
	List string `json:"list"`
	ID   string `json:"id"`
}

// MetricsRequest represents the arguments for get_metrics.
type MetricsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query string `json:"query"`
}

// AssignGroupRequest represents the arguments for assign_group.
type AssignGroupRequest struct {
	TabID string `json:"tab_id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ClearDataRequest represents the arguments for clear_data.
type ClearDataRequest struct {
	Categories []string `json:"categories"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// TabRequest identifies a tab for close_tab and switch_to_tab.
type TabRequest struct {
	TabID string `json:"tab_id"`
}

// CommandRequest names a user command for the command action.
type CommandRequest struct {
	Command string `json:"command"`
}

// DeleteBookmarkRequest identifies a bookmark for delete_bookmark.
type DeleteBookmarkRequest struct {
	ID string `json:"id"`
}

// OKResult is the generic acknowledgement payloads share.
type OKResult struct {
	OK bool `json:"ok"`
}

// CountResult reports how many things an operation touched.
type CountResult struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// BookmarkEntry is one bookmark joined with its metric-record annotation.
type BookmarkEntry struct {
	browser.Bookmark
	Note     string   `json:"note,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Visits   int      `json:"visits,omitempty"`
}

func (d *Dispatcher) saveCapture(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[SaveCaptureRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	item, err := d.captures.Save(ctx, capture.SaveInput{
		URL:   input.URL,
		Title: input.Title,
		Note:  input.Note,
		Type:  capture.CaptureType(input.Type),
	})
	if err != nil {
		return nil, err
	}

	// Reference captures also get a real bookmark. Bookmark creation is
	// best-effort; the capture is already persisted.
	if item.Type == capture.TypeReference {
		b, err := d.marks.Create(ctx, item.URL, item.Title)
		if err != nil {
			d.log.WithField("url", item.URL).WithError(err).Debug("companion bookmark failed")
		} else {
			d.cache.OnCreated(b)
		}
	}
	return item, nil
}

func (d *Dispatcher) saveUncategorized(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[SaveUncategorizedRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	item, err := d.captures.AutoCapture(ctx, input.URL, input.Title)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return OKResult{OK: true}, nil
	}
	return item, nil
}

func (d *Dispatcher) saveScratchpad(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[SaveScratchpadRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	note, err := d.captures.SaveScratchpad(ctx, input.Text)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (d *Dispatcher) saveAnnotation(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[SaveAnnotationRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if input.URL == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	rec, err := d.captures.SaveAnnotation(ctx, capture.AnnotateInput{
		URL:      input.URL,
		Title:    input.Title,
		Note:     input.Note,
		Keywords: input.Keywords,
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *Dispatcher) deleteItem(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[DeleteItemRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if err := d.captures.Delete(ctx, input.List, input.ID); err != nil {
		return nil, err
	}
	return OKResult{OK: true}, nil
}

func (d *Dispatcher) getData(ctx context.Context, args map[string]any) (any, error) {
	data, err := d.captures.All(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (d *Dispatcher) getSettings(ctx context.Context, args map[string]any) (any, error) {
	return d.settings.Get(ctx), nil
}

func (d *Dispatcher) saveSettings(ctx context.Context, args map[string]any) (any, error) {
	patch, err := decode[settings.Patch](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	merged, err := d.settings.Save(ctx, patch)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (d *Dispatcher) getMetrics(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[MetricsRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	recs, err := d.captures.Metrics(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (d *Dispatcher) getBookmarks(ctx context.Context, args map[string]any) (any, error) {
	marks, err := d.marks.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BookmarkEntry, 0, len(marks))
	for _, b := range marks {
		if b.URL == "" {
			continue
		}
		entry := BookmarkEntry{Bookmark: b}
		rec, err := d.captures.MetricByURL(ctx, b.URL)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			entry.Note = rec.Note
			entry.Keywords = rec.Keywords
			entry.Visits = rec.Visits
		}
		out = append(out, entry)
	}
	return out, nil
}

func (d *Dispatcher) search(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[SearchRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	out, err := d.captures.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) assignGroup(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[AssignGroupRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if err := d.coord.AssignToGroup(ctx, input.TabID, input.Name, input.Color); err != nil {
		return nil, err
	}
	return OKResult{OK: true}, nil
}

func (d *Dispatcher) autoGroup(ctx context.Context, args map[string]any) (any, error) {
	created, err := d.coord.AutoGroupAllTabs(ctx)
	if err != nil {
		return nil, err
	}
	return CountResult{OK: true, Count: created}, nil
}

func (d *Dispatcher) openNextGroup(ctx context.Context, args map[string]any) (any, error) {
	opened, err := d.coord.OpenNextGroup(ctx)
	if err != nil {
		return nil, err
	}
	return CountResult{OK: true, Count: opened}, nil
}

func (d *Dispatcher) closeBookmarked(ctx context.Context, args map[string]any) (any, error) {
	closed, err := d.coord.CloseBookmarkedTabs(ctx)
	if err != nil {
		return nil, err
	}
	return CountResult{OK: true, Count: closed}, nil
}

func (d *Dispatcher) clearData(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[ClearDataRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if err := d.captures.Clear(ctx, input.Categories); err != nil {
		return nil, err
	}
	return OKResult{OK: true}, nil
}

func (d *Dispatcher) export(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[ExportRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	out, err := export.Run(ctx, d.captures, d.baseDir, export.Input{Path: input.Path})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) getTabGroups(ctx context.Context, args map[string]any) (any, error) {
	groups, err := d.tabs.Groups(ctx)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *Dispatcher) getSuggestedGroups(ctx context.Context, args map[string]any) (any, error) {
	return browser.SuggestedGroups, nil
}

func (d *Dispatcher) closeTab(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[TabRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if input.TabID == "" {
		return nil, errors.NewInvalidRequest("tab_id is required")
	}
	if err := d.tabs.Close(ctx, input.TabID); err != nil {
		return nil, err
	}
	return OKResult{OK: true}, nil
}

func (d *Dispatcher) switchToTab(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[TabRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if input.TabID == "" {
		return nil, errors.NewInvalidRequest("tab_id is required")
	}
	if err := d.tabs.Activate(ctx, input.TabID); err != nil {
		return nil, err
	}
	return OKResult{OK: true}, nil
}

// CommandResult reports how the command's overlay message fared.
type CommandResult struct {
	OK       bool   `json:"ok"`
	Delivery string `json:"delivery"`
}

func (d *Dispatcher) command(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[CommandRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	delivery, err := d.coord.HandleCommand(ctx, input.Command)
	if err != nil {
		return nil, err
	}
	return CommandResult{OK: true, Delivery: string(delivery)}, nil
}

// bookmarkRemover is the optional deletion side of a bookmark directory.
// Platform-backed directories without it answer UNSUPPORTED.
type bookmarkRemover interface {
	Remove(ctx context.Context, id string) error
}

func (d *Dispatcher) deleteBookmark(ctx context.Context, args map[string]any) (any, error) {
	input, err := decode[DeleteBookmarkRequest](args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	remover, ok := d.marks.(bookmarkRemover)
	if !ok {
		return nil, errors.NewUnsupported("bookmark removal")
	}

	marks, err := d.marks.All(ctx)
	if err != nil {
		return nil, err
	}
	var removed *browser.Bookmark
	for i := range marks {
		if marks[i].ID == input.ID {
			removed = &marks[i]
			break
		}
	}
	if removed == nil {
		return nil, errors.NewNotFound(input.ID)
	}

	if err := remover.Remove(ctx, input.ID); err != nil {
		return nil, err
	}
	d.cache.OnRemoved(*removed)
	return OKResult{OK: true}, nil
}
