package column

import "strings"

// Placeholder is shown for absent values.
const Placeholder = "-"

// Kind tags how a cell should be presented.
type Kind string

// Display kinds.
const (
	KindText        Kind = "text"
	KindPlaceholder Kind = "placeholder"
	// KindTooltip is short text with the full value on hover.
	KindTooltip Kind = "tooltip"
	// KindIcons is a list rendered as icons (one per item).
	KindIcons Kind = "icons"
	// KindMarkdown carries the substituted source and sanitized HTML.
	KindMarkdown Kind = "markdown"
)

// Display is the rendered value of one cell.
type Display struct {
	Kind    Kind     `json:"kind"`
	Text    string   `json:"text,omitempty"`
	Tooltip string   `json:"tooltip,omitempty"`
	Items   []string `json:"items,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Text creates a text cell.
func Text(s string) Display { return Display{Kind: KindText, Text: s} }

// Absent creates a placeholder cell.
func Absent() Display { return Display{Kind: KindPlaceholder} }

// String returns a plain-text rendition for terminals and spreadsheets.
func (d Display) String() string {
	switch d.Kind {
	case KindPlaceholder:
		return Placeholder
	case KindIcons:
		return strings.Join(d.Items, ", ")
	default:
		return d.Text
	}
}
