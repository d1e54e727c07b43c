package browser

// GroupColors is the fixed nine-color palette assigned round-robin to new
// tab groups in creation order.
var GroupColors = []string{
	"grey", "blue", "red", "yellow", "green", "pink", "purple", "cyan", "orange",
}

// NextColor returns the palette color for the n-th created group.
func NextColor(n int) string {
	if n < 0 {
		n = 0
	}
	return GroupColors[n%len(GroupColors)]
}

// SuggestedGroup is a preset offered by the group-picker surface.
type SuggestedGroup struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SuggestedGroups are the fixed presets shown before any user-created groups.
var SuggestedGroups = []SuggestedGroup{
	{Name: "Reading", Color: "blue"},
	{Name: "Reference", Color: "grey"},
	{Name: "Someday", Color: "purple"},
}
