package mcp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/tabstash/internal/api"
	"github.com/hpungsan/tabstash/internal/bookmarks"
	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/config"
	"github.com/hpungsan/tabstash/internal/coordinator"
	"github.com/hpungsan/tabstash/internal/kv"
	"github.com/hpungsan/tabstash/internal/settings"
)

// testSetup wires a dispatcher over in-memory backends.
func testSetup(t *testing.T) *api.Dispatcher {
	t.Helper()

	store := kv.NewMemory()
	tabs := browser.NewMemoryTabs()
	marks := browser.NewMemoryBookmarks()
	cache := bookmarks.NewCache(marks)
	caps := capture.NewStore(store)
	cfg := settings.NewStore(store)

	log := logrus.New()
	log.SetOutput(io.Discard)

	coord := coordinator.New(coordinator.Deps{
		Tabs:      tabs,
		Messenger: browser.NewMemoryMessenger(),
		Bookmarks: cache,
		Settings:  cfg,
		Captures:  caps,
		Log:       log,
	})

	return api.NewDispatcher(api.Deps{
		Captures:  caps,
		Settings:  cfg,
		Coord:     coord,
		Tabs:      tabs,
		Bookmarks: marks,
		Cache:     cache,
		BaseDir:   t.TempDir(),
		Log:       log,
	})
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", res.Content[0])
	}
	return text.Text
}

func TestHandle_SaveAndGetData(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(testSetup(t))

	res, err := h.handle("save_capture")(ctx, makeRequest(map[string]any{
		"url": "https://example.com/read", "title": "Read", "type": "someday",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	res, err = h.handle("get_data")(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	var data capture.Data
	if err := json.Unmarshal([]byte(resultText(t, res)), &data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(data.Captures) != 1 || data.Captures[0].Type != capture.TypeSomeday {
		t.Errorf("data = %+v", data)
	}
}

func TestHandle_ErrorResult(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(testSetup(t))

	res, err := h.handle("save_capture")(ctx, makeRequest(map[string]any{
		"url": "https://example.com", "type": "archived",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("want IsError result")
	}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Error.Code != "INVALID_REQUEST" || payload.Error.Status != 400 {
		t.Errorf("error payload = %+v", payload.Error)
	}
}

func TestHandle_NotFoundDetailsPassThrough(t *testing.T) {
	ctx := context.Background()
	h := NewHandlers(testSetup(t))

	res, err := h.handle("delete_item")(ctx, makeRequest(map[string]any{
		"list": "uncategorized", "id": "missing",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Fatal("want IsError result")
	}
	if !strings.Contains(resultText(t, res), "NOT_FOUND") {
		t.Errorf("result = %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "details") {
		t.Errorf("non-internal details should pass through: %s", resultText(t, res))
	}
}

func TestNewServer_DisabledTools(t *testing.T) {
	d := testSetup(t)
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"stash_clear_data"}

	s := NewServer(d, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"stash_export", "stash_frobnicate"})
	if len(unknown) != 1 || unknown[0] != "stash_frobnicate" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("len = %d, want %d", len(names), len(toolRegistry))
	}
}

func TestRegistryActionsExist(t *testing.T) {
	actions := make(map[string]bool)
	for _, a := range api.Actions() {
		actions[a] = true
	}
	for name, entry := range toolRegistry {
		if !actions[entry.action] {
			t.Errorf("tool %s maps to unregistered action %q", name, entry.action)
		}
	}
}
