// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Teal   = lipgloss.Color("#14B8A6")
	Slate  = lipgloss.Color("#667085")
	Ink    = lipgloss.Color("#0B0F19")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)

// Stage renders a pipeline stage label (build, publish, deploy).
var Stage = lipgloss.NewStyle().Foreground(Teal).Bold(true)

// Cached renders the marker for a stage satisfied from cache.
var Cached = lipgloss.NewStyle().Foreground(Slate)

// Success renders a completed stage line.
var Success = lipgloss.NewStyle().Foreground(Green)

// Failure renders a failed stage line.
var Failure = lipgloss.NewStyle().Foreground(Red)
