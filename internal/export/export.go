// Package export renders the persisted collections as a markdown digest
// and writes it to disk.
package export

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/errors"
)

// Input contains parameters for the Export operation.
type Input struct {
	Path string // optional, default: <baseDir>/exports/tabstash-<timestamp>.md
}

// Output contains the result of the Export operation.
type Output struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Run renders all collections as markdown and writes the file.
func Run(ctx context.Context, store *capture.Store, baseDir string, input Input) (*Output, error) {
	now := time.Now()

	data, err := store.All(ctx)
	if err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		path = filepath.Join(baseDir, "exports",
			fmt.Sprintf("tabstash-%s.md", now.Format("20060102-150405")))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve any
	// existing file on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	content := Markdown(data, now)
	if err := os.WriteFile(tempPath, []byte(content), 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &Output{
		Path:       path,
		Count:      len(data.Captures) + len(data.Uncategorized) + len(data.Scratchpad),
		ExportedAt: now.Unix(),
	}, nil
}

// Markdown renders the full snapshot as a markdown document. Sections in
// order: the auto-captured inbox, then triaged captures grouped by type,
// then scratchpad notes. Captures with an unrecognized type land in the
// Reference section rather than disappearing.
func Markdown(data *capture.Data, now time.Time) string {
	var b strings.Builder
	b.WriteString("# TabStash Export\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format(time.RFC3339))

	if len(data.Uncategorized) > 0 {
		b.WriteString("## Uncategorized (auto-captured)\n")
		for _, it := range data.Uncategorized {
			writeItem(&b, it)
		}
		b.WriteString("\n")
	}

	groups := map[capture.CaptureType][]capture.Item{}
	for _, it := range data.Captures {
		typ := it.Type
		switch typ {
		case capture.TypeNext, capture.TypeSomeday, capture.TypeReference:
		default:
			typ = capture.TypeReference
		}
		groups[typ] = append(groups[typ], it)
	}

	sections := []struct {
		typ   capture.CaptureType
		label string
	}{
		{capture.TypeNext, "Next Actions"},
		{capture.TypeSomeday, "Someday / Maybe"},
		{capture.TypeReference, "Reference"},
	}
	for _, sec := range sections {
		items := groups[sec.typ]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", sec.label)
		for _, it := range items {
			writeItem(&b, it)
		}
		b.WriteString("\n")
	}

	if len(data.Scratchpad) > 0 {
		b.WriteString("## Scratchpad\n")
		for _, n := range data.Scratchpad {
			fmt.Fprintf(&b, "- %s\n", n.Text)
			fmt.Fprintf(&b, "  *%s*\n", dateOf(n.Timestamp))
		}
	}

	return b.String()
}

func writeItem(b *strings.Builder, it capture.Item) {
	fmt.Fprintf(b, "- [%s](%s)\n", it.Title, it.URL)
	if it.Note != "" {
		fmt.Fprintf(b, "  > %s\n", it.Note)
	}
	fmt.Fprintf(b, "  *%s*\n", dateOf(it.Timestamp))
}

func dateOf(unixMilli int64) string {
	return time.UnixMilli(unixMilli).UTC().Format("2006-01-02")
}
