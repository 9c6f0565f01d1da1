package render

// Icon is the SVG path data of a 24x24 outline icon shown next to a section
// heading.
type Icon string

const (
	IconInfo      Icon = "M13 16h-1v-4h-1m1-4h.01M21 12a9 9 0 11-18 0 9 9 0 0118 0z"
	IconClock     Icon = "M12 8v4l3 3m6-3a9 9 0 11-18 0 9 9 0 0118 0z"
	IconClipboard Icon = "M9 5H7a2 2 0 00-2 2v12a2 2 0 002 2h10a2 2 0 002-2V7a2 2 0 00-2-2h-2M9 5a2 2 0 002 2h2a2 2 0 002-2M9 5a2 2 0 012-2h2a2 2 0 012 2m-3 7h3m-3 4h3m-6-4h.01M9 16h.01"
	IconCheck     Icon = "M9 12l2 2 4-4m6 2a9 9 0 11-18 0 9 9 0 0118 0z"
	IconQuestion  Icon = "M8.228 9c.549-1.165 2.03-2 3.772-2 2.21 0 4 1.343 4 3 0 1.4-1.278 2.575-3.006 2.907-.542.104-.994.54-.994 1.093m0 3h.01M21 12a9 9 0 11-18 0 9 9 0 0118 0z"
)

// Glyph is the single character drawn inside the icon badge of a raster.
func (i Icon) Glyph() string {
	switch i {
	case IconInfo:
		return "i"
	case IconClock:
		return "!"
	case IconClipboard:
		return "="
	case IconCheck:
		return "+"
	case IconQuestion:
		return "?"
	}
	return "-"
}
