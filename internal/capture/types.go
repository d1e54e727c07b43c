// Package capture owns every persisted collection: the uncategorized
// inbox, triaged captures, scratchpad notes, and the per-URL metric
// records. All of it lives in flat kv records; concurrent read-modify-write
// of one collection is last-write-wins, which is acceptable at tab-event
// rates and deliberately not papered over here.
package capture

// CaptureType classifies a capture.
type CaptureType string

const (
	TypeUncategorized CaptureType = "uncategorized"
	TypeNext          CaptureType = "next"
	TypeSomeday       CaptureType = "someday"
	TypeReference     CaptureType = "reference"
)

// List names address the persisted collections in delete/clear requests.
const (
	ListCaptures      = "captures"
	ListUncategorized = "uncategorized"
	ListScratchpad    = "scratchpad"
	CategoryMetrics   = "metrics" // clear-only pseudo-category
)

// MaxNoteLen bounds scratchpad note text.
const MaxNoteLen = 500

// Item is one captured tab. Items are created on capture and mutated only
// by deletion; the annotation flow merges notes and keywords into the
// derived MetricRecord instead of editing the item.
type Item struct {
	ID        string      `json:"id"`
	URL       string      `json:"url"`
	Title     string      `json:"title"`
	Note      string      `json:"note,omitempty"`
	Keywords  []string    `json:"keywords,omitempty"`
	Timestamp int64       `json:"timestamp"` // unix milliseconds
	Type      CaptureType `json:"type"`
}

// Note is one scratchpad entry; it has no URL association.
type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// MetricRecord accumulates visit and dwell-time signal for one normalized
// URL. Records are only updated additively and only bulk-cleared, never
// deleted individually.
type MetricRecord struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Visits    int      `json:"visits"`
	TimeMs    int64    `json:"time_ms"`
	FirstSeen int64    `json:"first_seen"`
	LastSeen  int64    `json:"last_seen"`
	Keywords  []string `json:"keywords,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// Data is the full persisted snapshot returned to list surfaces.
type Data struct {
	Captures      []Item `json:"captures"`
	Uncategorized []Item `json:"uncategorized"`
	Scratchpad    []Note `json:"scratchpad"`
}

// Score ranks a metric record: visit count dominates, dwell time is a
// fractional tiebreaker (~200s of dwell weighs like one extra visit).
func Score(r MetricRecord) float64 {
	return float64(r.Visits)*10 + float64(r.TimeMs)/1000*0.05
}
