package anydiff

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for all visual elements of a report.
type Styles struct {
	Added            ColorPair // Added lines (+)
	Removed          ColorPair // Removed lines (-)
	Context          ColorPair // Unchanged lines around a block
	BlockHeader      ColorPair // Block locator and counts
	SourceHeader     ColorPair // Names of the compared sources
	Summary          ColorPair // Totals line
	AddedHighlight   ColorPair // Marked ranges within right-hand text
	RemovedHighlight ColorPair // Marked ranges within left-hand text
}
